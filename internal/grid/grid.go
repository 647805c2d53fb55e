// Package grid computes page geometry for the calendar document: paper
// dimensions, unit conversion between millimetres (configuration) and
// points (renderer), and a naive content-blind month grid.
package grid

import (
	"fmt"
	"time"

	"calprint/internal/dates"
)

// PaperSize is a closed set of supported paper formats. Unknown values are
// rejected at the boundary rather than silently mapped to a default.
type PaperSize string

const (
	A3     PaperSize = "A3"
	A4     PaperSize = "A4"
	A5     PaperSize = "A5"
	Letter PaperSize = "Letter"
	Legal  PaperSize = "Legal"
)

// Orientation selects portrait or landscape page layout.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Dim is a page dimension in millimetres.
type Dim struct {
	W, H float64
}

// Portrait dimensions; landscape swaps width and height.
var paperSizes = map[PaperSize]Dim{
	A3:     {W: 297, H: 420},
	A4:     {W: 210, H: 297},
	A5:     {W: 148, H: 210},
	Letter: {W: 215.9, H: 279.4},
	Legal:  {W: 215.9, H: 355.6},
}

// PageDimensions returns the physical page size for a paper format and
// orientation, in millimetres.
func PageDimensions(size PaperSize, o Orientation) (Dim, error) {
	d, ok := paperSizes[size]
	if !ok {
		return Dim{}, fmt.Errorf("grid: unknown paper size %q", size)
	}
	switch o {
	case Portrait:
	case Landscape:
		d.W, d.H = d.H, d.W
	default:
		return Dim{}, fmt.Errorf("grid: unknown orientation %q", o)
	}
	return d, nil
}

// ptPerMM converts between the millimetre space page sizes live in and the
// point space the renderer consumes.
const ptPerMM = 72.0 / 25.4

func MMToPt(mm float64) float64 { return mm * ptPerMM }

func PtToMM(pt float64) float64 { return pt / ptPerMM }

// Config describes one naive month grid request.
type Config struct {
	Year        int
	Month       time.Month
	Paper       PaperSize
	Orientation Orientation
	MarginMM    float64
	WeekStart   dates.WeekStart
}

// DayCell is the geometry of a single day, in millimetres.
type DayCell struct {
	Day      int
	Row, Col int
	X, Y     float64
	W, H     float64
}

// Layout is the derived geometry for one month. It is recomputed on every
// request and never persisted.
type Layout struct {
	Rows         int
	CellW, CellH float64
	Cells        []DayCell
}

// Naive computes an even-width, even-height grid that ignores cell content.
// The adaptive solver in internal/calendar supersedes this for production
// layout by varying row heights; this is the reference fallback.
func Naive(cfg Config) (Layout, error) {
	dim, err := PageDimensions(cfg.Paper, cfg.Orientation)
	if err != nil {
		return Layout{}, err
	}

	days := dates.DaysInMonth(cfg.Year, cfg.Month)
	offset := dates.FirstOffset(cfg.Year, cfg.Month, cfg.WeekStart)
	rows := dates.WeeksInMonth(cfg.Year, cfg.Month, cfg.WeekStart)

	cellW := (dim.W - 2*cfg.MarginMM) / 7
	cellH := (dim.H - 2*cfg.MarginMM) / float64(rows)

	layout := Layout{
		Rows:  rows,
		CellW: cellW,
		CellH: cellH,
		Cells: make([]DayCell, 0, days),
	}
	for day := 1; day <= days; day++ {
		idx := day - 1 + offset
		row, col := idx/7, idx%7
		layout.Cells = append(layout.Cells, DayCell{
			Day: day,
			Row: row,
			Col: col,
			X:   cfg.MarginMM + float64(col)*cellW,
			Y:   cfg.MarginMM + float64(row)*cellH,
			W:   cellW,
			H:   cellH,
		})
	}
	return layout, nil
}
