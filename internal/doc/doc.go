// Package doc defines the content tree the calendar builder hands to the
// document renderer. The renderer treats it as a full page description:
// explicit per-row heights and per-column widths are respected exactly,
// and each Page is a keep-together unit that must never be split across a
// physical page boundary.
package doc

import (
	"time"

	"calprint/internal/color"
)

// Meta is document-level metadata embedded into the rendered file.
type Meta struct {
	Title    string
	Author   string
	Keywords []string
	Created  time.Time
}

// HeaderCell is one weekday label in the header row.
type HeaderCell struct {
	Text string
}

// EntryLine is one appointment line inside a day cell, rendered top-down
// in sort order.
type EntryLine struct {
	Text       string
	Color      color.RGB
	Background color.RGB
}

// GridCell is one day cell. Blank cells pad the first and last week rows.
type GridCell struct {
	Blank   bool
	Day     int
	Entries []EntryLine
}

// GridRow is one calendar week with its solved height in points.
type GridRow struct {
	Height float64
	Cells  [7]GridCell
}

// LegendCell is one category swatch in the legend.
type LegendCell struct {
	Text       string
	Color      color.RGB
	Background color.RGB
}

// LegendRow holds up to seven legend cells.
type LegendRow struct {
	Height float64
	Cells  []LegendCell
}

// Page describes one rendered month. All lengths are in points.
type Page struct {
	Title string

	PageW, PageH float64
	Margin       float64

	TitleHeight  float64
	HeaderHeight float64
	ColWidth     float64

	TitleFontSize  float64
	HeaderFontSize float64
	// FontSize is the solved entry font size for this page.
	FontSize float64

	Header [7]HeaderCell
	Rows   []GridRow
	Legend []LegendRow
}

// Document is the root of the content tree, one Page per month in
// insertion order.
type Document struct {
	Meta  Meta
	Pages []Page
}
