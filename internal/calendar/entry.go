package calendar

import (
	"fmt"
	"strings"
	"time"

	"calprint/internal/color"
)

// Entry is one appointment occurrence rendered into a single day cell.
// Multi-day appointments are stored once per page and cloned into per-day
// entries at render time; see expandForMonth.
type Entry struct {
	// Day is the day-of-month of Start; the two never diverge.
	Day int

	Start time.Time
	// End is nil for open-ended or point-in-time appointments.
	End *time.Time

	Message string

	TextColor color.RGB
	BGColor   color.RGB

	HideStartTime bool
	HideEndTime   bool

	// Continuation marks days 2..N of a multi-day span.
	Continuation bool

	// OriginalStart preserves the source start on per-day clones.
	OriginalStart *time.Time
}

// NewEntry builds an entry from normalized colors. The end time, when
// present, must not precede the start. End times are hidden by default and
// enabled per entry by the caller.
func NewEntry(start time.Time, end *time.Time, message string, text, bg color.RGB) (*Entry, error) {
	if end != nil && end.Before(start) {
		return nil, fmt.Errorf("calendar: entry end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return &Entry{
		Day:         start.Day(),
		Start:       start,
		End:         end,
		Message:     message,
		TextColor:   text,
		BGColor:     bg,
		HideEndTime: true,
	}, nil
}

// NewEntryHex is NewEntry with hex color strings. Empty strings select the
// defaults (black text on white); malformed hex fails fast.
func NewEntryHex(start time.Time, end *time.Time, message, textHex, bgHex string) (*Entry, error) {
	text := color.Black
	bg := color.White
	if textHex != "" {
		c, err := color.Parse(textHex)
		if err != nil {
			return nil, err
		}
		text = c
	}
	if bgHex != "" {
		c, err := color.Parse(bgHex)
		if err != nil {
			return nil, err
		}
		bg = c
	}
	return NewEntry(start, end, message, text, bg)
}

// SpansDays reports whether the entry covers more than one calendar day,
// ignoring the time of day.
func (e *Entry) SpansDays() bool {
	if e.End == nil {
		return false
	}
	y1, m1, d1 := e.Start.Date()
	y2, m2, d2 := e.End.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

// AllDay reports the upstream all-day convention: the entry starts at
// midnight and either has no end, ends at midnight, or ends at 23:59
// ("ends at end of day").
func (e *Entry) AllDay() bool {
	if e.Start.Hour() != 0 || e.Start.Minute() != 0 {
		return false
	}
	if e.End == nil {
		return true
	}
	h, m := e.End.Hour(), e.End.Minute()
	return (h == 0 && m == 0) || (h == 23 && m == 59)
}

// FormatStart returns the display form of the start time, empty when the
// time is hidden or the entry is all-day.
func (e *Entry) FormatStart() string {
	if e.HideStartTime || e.AllDay() {
		return ""
	}
	return formatHour(e.Start)
}

// FormatEnd returns the display form of the end time, empty when hidden,
// absent, or all-day.
func (e *Entry) FormatEnd() string {
	if e.HideEndTime || e.End == nil || e.AllDay() {
		return ""
	}
	return formatHour(*e.End)
}

// formatHour renders "9h" for times on the hour and "9:30h" otherwise.
func formatHour(t time.Time) string {
	if t.Minute() == 0 {
		return fmt.Sprintf("%dh", t.Hour())
	}
	return fmt.Sprintf("%d:%02dh", t.Hour(), t.Minute())
}

// Line is the cell rendering of the entry: start time, message and end
// time joined by spaces, with hidden parts omitted.
func (e *Entry) Line() string {
	parts := make([]string, 0, 3)
	if s := e.FormatStart(); s != "" {
		parts = append(parts, s)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if s := e.FormatEnd(); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// CloneForDay copies the entry onto another calendar day, keeping the
// original wall-clock start time. The clone has no end date and records
// the source start; the caller adjusts continuation flags and message
// afterward.
func (e *Entry) CloneForDay(day int, month time.Month, year int) *Entry {
	orig := e.Start
	return &Entry{
		Day: day,
		Start: time.Date(year, month, day,
			e.Start.Hour(), e.Start.Minute(), 0, 0, e.Start.Location()),
		Message:       e.Message,
		TextColor:     e.TextColor,
		BGColor:       e.BGColor,
		HideStartTime: e.HideStartTime,
		HideEndTime:   e.HideEndTime,
		OriginalStart: &orig,
	}
}
