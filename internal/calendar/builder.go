// Package calendar builds printable month-grid documents: it accumulates
// months, categories and entries, expands multi-day appointments into
// per-day continuations, solves an adaptive font size and row heights for
// each page, and emits a content tree for the document renderer.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"calprint/internal/color"
	"calprint/internal/dates"
	"calprint/internal/doc"
	"calprint/internal/grid"
	"calprint/internal/model"
)

var (
	// ErrNoPage is returned when an entry is added before any month.
	ErrNoPage = errors.New("calendar: entry added before any month")
	// ErrNoPages is returned when a document is generated with no months.
	ErrNoPages = errors.New("calendar: no months added")
	// ErrNoRenderer is returned by Generate when no renderer is configured.
	ErrNoRenderer = errors.New("calendar: no renderer configured")
)

// Renderer turns a finished content tree into a binary document. Failures
// propagate unchanged to the caller of Generate.
type Renderer interface {
	Render(*doc.Document) ([]byte, error)
}

// Options configure a Builder. Zero values select the defaults below.
type Options struct {
	Paper       grid.PaperSize
	Orientation grid.Orientation
	MarginMM    float64
	WeekStart   dates.WeekStart
	Author      string

	// Legend controls whether category legend rows are appended to each
	// page. Legend rows only appear when categories exist.
	Legend bool

	TitleFontSize   float64
	HeaderFontSize  float64
	DefaultFontSize float64
	MinFontSize     float64

	Renderer Renderer
}

// Fixed layout allowances in points.
const (
	titlePadding  = 6.0
	headerPadding = 4.0
	legendHeight  = 18.0
	safetyBorder  = 4.0
	defaultMargin = 10.0 // mm
)

func (o *Options) fillDefaults() {
	if o.Paper == "" {
		o.Paper = grid.A4
	}
	if o.Orientation == "" {
		o.Orientation = grid.Portrait
	}
	if o.MarginMM <= 0 {
		o.MarginMM = defaultMargin
	}
	if o.TitleFontSize <= 0 {
		o.TitleFontSize = 18
	}
	if o.HeaderFontSize <= 0 {
		o.HeaderFontSize = 10
	}
	if o.DefaultFontSize <= 0 {
		o.DefaultFontSize = 10
	}
	if o.MinFontSize <= 0 {
		o.MinFontSize = 5
	}
}

// Page is one month accumulating entries until generation. Entries are
// stored unexpanded; multi-day spans are materialized per day only at
// render time.
type Page struct {
	Month   time.Month
	Year    int
	Title   string
	Entries []*Entry
}

// Builder accumulates pages and categories for one document. A Builder is
// not safe for concurrent mutation; callers serialize AddMonth/AddEntry/
// Generate on one instance.
type Builder struct {
	opts       Options
	pages      []*Page
	categories map[string]model.Category
	catOrder   []string

	// now is the clock used for document metadata; tests may replace it.
	now func() time.Time
}

// NewBuilder returns a Builder for one document generation request.
func NewBuilder(opts Options) *Builder {
	opts.fillDefaults()
	return &Builder{
		opts:       opts,
		categories: make(map[string]model.Category),
		now:        time.Now,
	}
}

// AddMonth appends a new page. An empty title defaults to "Month Year".
func (b *Builder) AddMonth(month time.Month, year int, title string) {
	if title == "" {
		title = fmt.Sprintf("%s %d", month, year)
	}
	b.pages = append(b.pages, &Page{Month: month, Year: year, Title: title})
}

// AddCategory registers or overwrites a category. Colors must be valid hex.
func (b *Builder) AddCategory(id, name, textHex, bgHex string) error {
	text, err := color.Parse(textHex)
	if err != nil {
		return err
	}
	bg, err := color.Parse(bgHex)
	if err != nil {
		return err
	}
	if _, exists := b.categories[id]; !exists {
		b.catOrder = append(b.catOrder, id)
	}
	b.categories[id] = model.Category{ID: id, Name: name, Text: text, Background: bg}
	return nil
}

// AddEntry appends an entry to the current (last added) page. Empty color
// strings select black on white; malformed hex fails fast. The entry is
// returned so the caller may toggle its time-display flags before
// generation.
func (b *Builder) AddEntry(start time.Time, end *time.Time, message, textHex, bgHex string) (*Entry, error) {
	if len(b.pages) == 0 {
		return nil, ErrNoPage
	}
	e, err := NewEntryHex(start, end, message, textHex, bgHex)
	if err != nil {
		return nil, err
	}
	page := b.pages[len(b.pages)-1]
	page.Entries = append(page.Entries, e)
	return e, nil
}

// AddEntryWithCategory resolves the category colors for the entry. An
// unknown category id is not an error: the entry falls back to the default
// black-on-white pair, tolerating stale references across a long-lived
// builder session.
func (b *Builder) AddEntryWithCategory(start time.Time, end *time.Time, message, categoryID string) (*Entry, error) {
	if len(b.pages) == 0 {
		return nil, ErrNoPage
	}
	text, bg := color.Black, color.White
	if cat, ok := b.categories[categoryID]; ok {
		text, bg = cat.Text, cat.Background
	}
	e, err := NewEntry(start, end, message, text, bg)
	if err != nil {
		return nil, err
	}
	page := b.pages[len(b.pages)-1]
	page.Entries = append(page.Entries, e)
	return e, nil
}

// Document builds the content tree for all pages in insertion order.
func (b *Builder) Document() (*doc.Document, error) {
	if len(b.pages) == 0 {
		return nil, ErrNoPages
	}

	dim, err := grid.PageDimensions(b.opts.Paper, b.opts.Orientation)
	if err != nil {
		return nil, err
	}
	pageW := grid.MMToPt(dim.W)
	pageH := grid.MMToPt(dim.H)
	margin := grid.MMToPt(b.opts.MarginMM)

	d := &doc.Document{Meta: b.buildMeta()}
	for _, p := range b.pages {
		page := b.buildPage(p, pageW, pageH, margin)
		d.Pages = append(d.Pages, page)
	}
	return d, nil
}

// Generate builds the content tree and hands it to the renderer.
func (b *Builder) Generate() ([]byte, error) {
	d, err := b.Document()
	if err != nil {
		return nil, err
	}
	if b.opts.Renderer == nil {
		return nil, ErrNoRenderer
	}
	return b.opts.Renderer.Render(d)
}

// buildMeta assembles document metadata: the title from the first and last
// page titles, the configured author, and the category names as keywords.
func (b *Builder) buildMeta() doc.Meta {
	first := b.pages[0].Title
	last := b.pages[len(b.pages)-1].Title
	title := first
	if last != first {
		title = first + " - " + last
	}
	keywords := make([]string, 0, len(b.catOrder))
	for _, id := range b.catOrder {
		keywords = append(keywords, b.categories[id].Name)
	}
	return doc.Meta{
		Title:    title,
		Author:   b.opts.Author,
		Keywords: keywords,
		Created:  b.now(),
	}
}

// buildPage runs the per-page layout pipeline: expand, sort, group, solve
// font size and row heights, then emit the page subtree.
func (b *Builder) buildPage(p *Page, pageW, pageH, margin float64) doc.Page {
	expanded := expandForMonth(p.Entries, p.Month, p.Year)
	sortEntries(expanded)
	byDay := groupByDay(expanded)

	days := dates.DaysInMonth(p.Year, p.Month)
	offset := dates.FirstOffset(p.Year, p.Month, b.opts.WeekStart)
	weeks := dates.WeeksInMonth(p.Year, p.Month, b.opts.WeekStart)

	colWidth := (pageW - 2*margin) / 7
	titleHeight := b.opts.TitleFontSize*lineHeightFactor + titlePadding
	headerHeight := b.opts.HeaderFontSize*lineHeightFactor + headerPadding

	legendRows := 0
	if b.opts.Legend && len(b.catOrder) > 0 {
		legendRows = (len(b.catOrder) + 6) / 7
	}

	available := pageH - 2*margin - titleHeight - headerHeight -
		float64(legendRows)*legendHeight - safetyBorder

	fontSize, contentHeights := solveFontSize(byDay, weeks, offset, days,
		colWidth, available, b.opts.DefaultFontSize, b.opts.MinFontSize)
	rowHeights := distributeHeights(contentHeights, available)

	page := doc.Page{
		Title:          p.Title,
		PageW:          pageW,
		PageH:          pageH,
		Margin:         margin,
		TitleHeight:    titleHeight,
		HeaderHeight:   headerHeight,
		ColWidth:       colWidth,
		TitleFontSize:  b.opts.TitleFontSize,
		HeaderFontSize: b.opts.HeaderFontSize,
		FontSize:       fontSize,
	}

	for i, name := range dates.Weekdays(b.opts.WeekStart) {
		page.Header[i] = doc.HeaderCell{Text: name}
	}

	page.Rows = make([]doc.GridRow, weeks)
	for row := 0; row < weeks; row++ {
		gr := doc.GridRow{Height: rowHeights[row]}
		for col := 0; col < 7; col++ {
			day := row*7 + col - offset + 1
			if day < 1 || day > days {
				gr.Cells[col] = doc.GridCell{Blank: true}
				continue
			}
			cell := doc.GridCell{Day: day}
			for _, e := range byDay[day] {
				cell.Entries = append(cell.Entries, doc.EntryLine{
					Text:       e.Line(),
					Color:      e.TextColor,
					Background: e.BGColor,
				})
			}
			gr.Cells[col] = cell
		}
		page.Rows[row] = gr
	}

	if legendRows > 0 {
		page.Legend = b.buildLegend()
	}
	return page
}

// buildLegend chunks the registered categories into rows of seven cells.
func (b *Builder) buildLegend() []doc.LegendRow {
	var rows []doc.LegendRow
	row := doc.LegendRow{Height: legendHeight}
	for _, id := range b.catOrder {
		cat := b.categories[id]
		row.Cells = append(row.Cells, doc.LegendCell{
			Text:       cat.Name,
			Color:      cat.Text,
			Background: cat.Background,
		})
		if len(row.Cells) == 7 {
			rows = append(rows, row)
			row = doc.LegendRow{Height: legendHeight}
		}
	}
	if len(row.Cells) > 0 {
		rows = append(rows, row)
	}
	return rows
}
