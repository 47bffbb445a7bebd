package extract

import (
	"strings"
)

// Table is a detected tabular region as a rectangular grid of cells.
type Table struct {
	Rows [][]string `json:"rows"`
}

// NewTable normalizes a raw grid: cell whitespace is collapsed, rows with no
// content are dropped and short rows are padded to the widest row.
func NewTable(raw [][]string) Table {
	width := 0
	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		row := make([]string, len(r))
		blank := true
		for i, c := range r {
			row[i] = strings.Join(strings.Fields(c), " ")
			if row[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		width = max(width, len(row))
		rows = append(rows, row)
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}
	return Table{Rows: rows}
}

// Empty reports a table without rows; such tables are never part of a result.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Cols is the grid width.
func (t Table) Cols() int {
	if t.Empty() {
		return 0
	}
	return len(t.Rows[0])
}

// Markdown renders the table as a pipe table with the first row as header.
func (t Table) Markdown() string {
	if t.Empty() {
		return ""
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(c, "|", `\|`))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(t.Rows[0])
	b.WriteString("|")
	for range t.Rows[0] {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, r := range t.Rows[1:] {
		writeRow(r)
	}
	return b.String()
}

// tablesFromRows finds runs of at least two consecutive rows that have two
// or more cells each. Rows with fewer cells terminate a run.
func tablesFromRows(rows [][]string) []Table {
	var tables []Table
	var run [][]string
	flush := func() {
		if len(run) >= 2 {
			if t := NewTable(run); !t.Empty() {
				tables = append(tables, t)
			}
		}
		run = nil
	}
	for _, r := range rows {
		if countCells(r) >= 2 {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()
	return tables
}

func countCells(r []string) int {
	n := 0
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
