package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

type tableOptions struct {
	headers  []string
	rows     [][]string
	aligns   []columnAlignment
	colorize bool
	// rowColors, when colorize is set, tints whole rows by index.
	rowColors map[int]text.Colors
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return renderTableWith(tableOptions{headers: headers, rows: rows, aligns: aligns})
}

func renderTableWith(opts tableOptions) string {
	columns := len(opts.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if opts.colorize {
		tw.Style().Color.Header = text.Colors{text.Bold, text.FgBlue}
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = opts.headers[i]
	}
	tw.AppendHeader(header)

	for idx, row := range opts.rows {
		r := make(table.Row, columns)
		colors, tinted := opts.rowColors[idx]
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if opts.colorize && tinted {
				cell = colors.Sprint(cell)
			}
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(opts.aligns) && opts.aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
