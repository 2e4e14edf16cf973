// Package config loads, normalizes, and validates eerecord configuration data.
//
// It supplies repository defaults that mirror the stock Easy Effects and
// PipeWire setup (monitor node ee_soe_output_level, recorder node pw-record,
// capture target 0), reads TOML files, and expands user paths. CLI flags
// override the loaded values for a single invocation; the file only changes
// defaults.
//
// Always obtain settings through this package so downstream code receives
// trimmed binary names, canonical log formats, and clear validation errors.
package config
