// Package pipeline wires the application together: configuration to ICS
// sources, expanded appointments into the calendar builder, and the
// rendered document to a filename.
package pipeline

import (
	"context"
	"sort"
	"time"

	"calprint/internal/calendar"
	"calprint/internal/color"
	"calprint/internal/config"
	"calprint/internal/dates"
	"calprint/internal/emit"
	"calprint/internal/grid"
	"calprint/internal/ics"
	appLog "calprint/internal/log"
	"calprint/internal/model"
	"calprint/internal/pdf"
)

// restrictedText replaces the summary of private/confidential appointments
// in the printed document.
const restrictedText = "Busy"

// Result is one generated document.
type Result struct {
	Blob     []byte
	Filename string
	First    emit.MonthRef
	Last     emit.MonthRef
}

// Generator runs the fetch -> expand -> layout -> render chain for one
// configuration.
type Generator struct {
	cfg      *config.Config
	fetcher  *ics.Fetcher
	renderer calendar.Renderer
	now      func() time.Time
}

func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:      cfg,
		fetcher:  ics.NewFetcher(cfg.CacheDir),
		renderer: pdf.New(),
		now:      time.Now,
	}
}

// Generate renders `months` consecutive months starting at the month of
// `from` into one document. months < 1 selects the configured count.
func (g *Generator) Generate(ctx context.Context, from time.Time, months int) (*Result, error) {
	if months < 1 {
		months = g.cfg.Months
	}
	ws, err := dates.ParseWeekStart(g.cfg.WeekStart)
	if err != nil {
		return nil, err
	}
	loc := resolveLocation(g.cfg.Timezone)

	rangeStart := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, loc)
	rangeEnd := rangeStart.AddDate(0, months, 0)

	appts, err := g.loadAppointments(ctx, loc, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	b := calendar.NewBuilder(calendar.Options{
		Paper:       grid.PaperSize(g.cfg.PaperSize),
		Orientation: grid.Orientation(g.cfg.Orientation),
		MarginMM:    g.cfg.MarginMM,
		WeekStart:   ws,
		Author:      g.cfg.Author,
		Legend:      g.cfg.Legend,
		Renderer:    g.renderer,
	})

	// Every source is a category: its color fills cells, a contrast pick
	// keeps the text readable, and its name lands in the legend.
	for _, src := range g.cfg.Sources {
		bg := color.White
		if src.Color != "" {
			c, cerr := color.Parse(src.Color)
			if cerr != nil {
				return nil, cerr
			}
			bg = c
		}
		name := src.Name
		if name == "" {
			name = src.ID
		}
		if err := b.AddCategory(src.ID, name, color.Contrast(bg).Hex(), bg.Hex()); err != nil {
			return nil, err
		}
	}

	for i := 0; i < months; i++ {
		monthStart := rangeStart.AddDate(0, i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)
		b.AddMonth(monthStart.Month(), monthStart.Year(), "")

		for _, a := range appts {
			if !overlapsRange(a, monthStart, monthEnd) {
				continue
			}
			if err := g.addEntry(b, a); err != nil {
				// A single bad appointment must not sink the document.
				appLog.Error("pipeline: appointment skipped", err, "uid", a.UID, "source", a.SourceID)
			}
		}
	}

	blob, err := b.Generate()
	if err != nil {
		return nil, err
	}

	first := emit.MonthRef{Year: rangeStart.Year(), Month: rangeStart.Month()}
	lastStart := rangeStart.AddDate(0, months-1, 0)
	last := emit.MonthRef{Year: lastStart.Year(), Month: lastStart.Month()}

	appLog.Info("document generated",
		"pages", months,
		"appointments", len(appts),
		"bytes", len(blob),
	)

	return &Result{
		Blob:     blob,
		Filename: emit.Filename(first, last, g.now(), "pdf"),
		First:    first,
		Last:     last,
	}, nil
}

// loadAppointments fetches, parses and expands all configured sources into
// a deterministically ordered appointment list.
func (g *Generator) loadAppointments(ctx context.Context, loc *time.Location, rangeStart, rangeEnd time.Time) ([]model.Appointment, error) {
	sources := make([]ics.Source, 0, len(g.cfg.Sources))
	for _, src := range g.cfg.Sources {
		sources = append(sources, ics.Source{
			ID:    src.ID,
			URL:   src.URL,
			Name:  src.Name,
			Color: src.Color,
		})
	}

	results, fetchErrs := g.fetcher.FetchAll(ctx, sources)
	if len(fetchErrs) > 0 {
		appLog.Error("pipeline: some sources failed to fetch", fetchErrs[0], "failed", len(fetchErrs))
	}

	parsed := make([]ics.ParsedEvent, 0)
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("pipeline: parse failed", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	expanded, err := ics.Expand(parsed, ics.ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	if err != nil {
		return nil, err
	}

	appts := expanded.Appointments
	// Expansion iterates a map; re-establish a stable insertion order so
	// same-day ties resolve identically between runs.
	sort.SliceStable(appts, func(i, j int) bool {
		if !appts[i].Start.Equal(appts[j].Start) {
			return appts[i].Start.Before(appts[j].Start)
		}
		if appts[i].SourceID != appts[j].SourceID {
			return appts[i].SourceID < appts[j].SourceID
		}
		return appts[i].UID < appts[j].UID
	})
	return appts, nil
}

// addEntry places one appointment on the current builder page.
func (g *Generator) addEntry(b *calendar.Builder, a model.Appointment) error {
	message := a.Text
	if a.Restricted {
		message = restrictedText
	}
	end := normalizeEnd(a)

	// An event-level color wins over the category pair; unparsable values
	// (CSS color names are allowed upstream) fall back to the category.
	if a.ColorHex != "" {
		if bg, err := color.Parse(a.ColorHex); err == nil {
			e, err := b.AddEntry(a.Start, end, message, color.Contrast(bg).Hex(), bg.Hex())
			if err != nil {
				return err
			}
			e.HideEndTime = !g.cfg.ShowEndTimes
			return nil
		}
	}

	e, err := b.AddEntryWithCategory(a.Start, end, message, a.SourceID)
	if err != nil {
		return err
	}
	e.HideEndTime = !g.cfg.ShowEndTimes
	return nil
}

// normalizeEnd maps the exclusive all-day end convention (next day 00:00)
// onto the builder's inclusive one (same day 23:59).
func normalizeEnd(a model.Appointment) *time.Time {
	if a.End == nil {
		return nil
	}
	end := *a.End
	if a.AllDay && end.Hour() == 0 && end.Minute() == 0 && end.After(a.Start) {
		end = end.Add(-time.Minute)
	}
	return &end
}

func overlapsRange(a model.Appointment, start, end time.Time) bool {
	aEnd := a.Start
	if a.End != nil {
		aEnd = *a.End
	}
	return a.Start.Before(end) && !aEnd.Before(start)
}

func resolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("pipeline: bad timezone, using local", err, "name", name)
		return time.Local
	}
	return loc
}
