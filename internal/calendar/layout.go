package calendar

import "unicode/utf8"

// Layout heuristics. Content height is estimated from character counts
// rather than glyph metrics; the bias is toward overestimation so cells do
// not visually overflow at the cost of some extra whitespace.
const (
	// lineHeightFactor converts a font size into a line height.
	lineHeightFactor = 1.4
	// avgCharWidthFactor approximates the average glyph width as a
	// fraction of the font size.
	avgCharWidthFactor = 0.5
	// fontStep is the decrement used by the font-size search.
	fontStep = 0.5
)

// rowContentHeights estimates the required content height per week row at
// the given font size. A row's height is the maximum over its seven day
// cells: a day-number line plus one wrapped text block per entry. Empty
// cells use a one-line floor so blank weeks keep visible height.
func rowContentHeights(byDay [32][]*Entry, weeks, offset, days int, colWidth, fontSize float64) []float64 {
	lineHeight := fontSize * lineHeightFactor
	charsPerLine := int(colWidth / (fontSize * avgCharWidthFactor))
	if charsPerLine < 1 {
		charsPerLine = 1
	}
	dayNumberHeight := lineHeight
	minCellHeight := dayNumberHeight + lineHeight

	heights := make([]float64, weeks)
	for row := 0; row < weeks; row++ {
		rowHeight := minCellHeight
		for col := 0; col < 7; col++ {
			day := row*7 + col - offset + 1
			if day < 1 || day > days {
				continue
			}
			h := dayNumberHeight
			for _, e := range byDay[day] {
				n := utf8.RuneCountInString(e.Line())
				lines := (n + charsPerLine - 1) / charsPerLine
				if lines < 1 {
					lines = 1
				}
				h += float64(lines) * lineHeight
			}
			if h > rowHeight {
				rowHeight = h
			}
		}
		heights[row] = rowHeight
	}
	return heights
}

// solveFontSize searches downward from the default entry font size until
// the summed row content heights fit the available grid height. When even
// the minimum size does not fit, the minimum is accepted anyway: overflow
// is a tolerated degradation, never an error.
func solveFontSize(byDay [32][]*Entry, weeks, offset, days int, colWidth, available, defaultSize, minSize float64) (float64, []float64) {
	size := defaultSize
	for {
		heights := rowContentHeights(byDay, weeks, offset, days, colWidth, size)
		if sum(heights) <= available || size <= minSize {
			return size, heights
		}
		size -= fontStep
		if size < minSize {
			size = minSize
		}
	}
}

// distributeHeights turns per-row content heights into final row heights.
// Rows whose content exceeds an equal share of the remaining pool are
// pinned to their content height; the pass repeats against the shrinking
// pool until no row qualifies, then the still-flexible rows split what is
// left equally. Each pass pins at least one row or terminates, so the loop
// runs at most len(content) times. Whenever the content fits, the result
// sums exactly to available.
func distributeHeights(content []float64, available float64) []float64 {
	n := len(content)
	heights := make([]float64, n)
	fixed := make([]bool, n)

	remaining := available
	flexible := n
	for flexible > 0 {
		share := remaining / float64(flexible)
		pinned := false
		for i, c := range content {
			if fixed[i] || c <= share {
				continue
			}
			fixed[i] = true
			heights[i] = c
			remaining -= c
			flexible--
			pinned = true
		}
		if !pinned {
			for i := range content {
				if !fixed[i] {
					heights[i] = share
				}
			}
			break
		}
	}
	return heights
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
