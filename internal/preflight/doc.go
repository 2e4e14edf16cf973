// Package preflight provides readiness checks for the external tools,
// filesystem paths, and audio session that eerecord depends on.
//
// These checks run in two contexts:
//   - The workflow runner calls RunAll before recording and logs failures
//     as warnings. Nothing here stops a run; missing tools surface later as
//     silent no-ops, so the warning is the user's only hint.
//   - The CLI "eerecord doctor" command renders every check as a table.
package preflight
