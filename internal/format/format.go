// Package format renders report tables for a terminal, for Markdown (PR
// comments, tickets) or as CSV for spreadsheets.
package format

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects the table renderer.
type Mode int

const (
	ASCII    Mode = iota // box-drawn terminal table
	Markdown             // GitHub-flavoured Markdown
	CSV                  // comma-separated, header first
)

var modeNames = map[string]Mode{
	"":         ASCII,
	"table":    ASCII,
	"ascii":    ASCII,
	"markdown": Markdown,
	"md":       Markdown,
	"csv":      CSV,
}

// ParseMode maps an --output value to a Mode.
func ParseMode(s string) (Mode, error) {
	if m, ok := modeNames[strings.ToLower(s)]; ok {
		return m, nil
	}
	return ASCII, fmt.Errorf("unknown table format %q (want table, markdown or csv)", s)
}

// ColumnAlign is a column's horizontal alignment.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

var aligns = [...]text.Align{
	AlignDefault: text.AlignDefault,
	AlignLeft:    text.AlignLeft,
	AlignCenter:  text.AlignCenter,
	AlignRight:   text.AlignRight,
}

// ColumnConfig sets per-column alignment and width. Number is 1-based.
// MaxWidth 0 means unlimited; CSV output ignores both.
type ColumnConfig struct {
	Number   int
	Align    ColumnAlign
	MaxWidth int
}

// TableBuilder collects a table and renders it in the Mode it was created
// with. Values are printed with fmt's default verb.
type TableBuilder interface {
	Header(cols ...string)
	Row(vals ...any)
	Footer(vals ...any)
	Columns(cfgs ...ColumnConfig)
	String() string
}

// NewTable returns an empty table for m.
func NewTable(m Mode) TableBuilder {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &prettyTable{w: w, mode: m}
}

type prettyTable struct {
	w    table.Writer
	mode Mode
}

func toRow(vals []any) table.Row {
	return append(table.Row(nil), vals...)
}

func (t *prettyTable) Header(cols ...string) {
	row := make(table.Row, 0, len(cols))
	for _, c := range cols {
		row = append(row, c)
	}
	t.w.AppendHeader(row)
}

func (t *prettyTable) Row(vals ...any)    { t.w.AppendRow(toRow(vals)) }
func (t *prettyTable) Footer(vals ...any) { t.w.AppendFooter(toRow(vals)) }

func (t *prettyTable) Columns(cfgs ...ColumnConfig) {
	out := make([]table.ColumnConfig, 0, len(cfgs))
	for _, c := range cfgs {
		align := text.AlignDefault
		if int(c.Align) < len(aligns) {
			align = aligns[c.Align]
		}
		out = append(out, table.ColumnConfig{Number: c.Number, Align: align, WidthMax: c.MaxWidth})
	}
	t.w.SetColumnConfigs(out)
}

func (t *prettyTable) String() string {
	switch t.mode {
	case Markdown:
		return t.w.RenderMarkdown()
	case CSV:
		return t.w.RenderCSV()
	}
	return t.w.Render()
}
