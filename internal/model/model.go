package model

import (
	"time"

	"calprint/internal/color"
)

// Appointment is one concrete appointment occurrence as produced by an
// appointment source, after recurrence expansion and timezone
// normalization. The calendar builder does not care how it was fetched.
type Appointment struct {
	SourceID string // source calendar ID (e.g., config source ID)
	UID      string // iCalendar UID

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// appointment, derived from the local start time.
	InstanceKey string

	Text string // display text (summary)
	Note string // longer description, not rendered in the grid

	// ColorHex is the source- or event-supplied color; empty means the
	// category color applies.
	ColorHex string

	// Restricted marks private/confidential appointments whose text must
	// not appear in the printed document.
	Restricted bool

	AllDay bool

	// Start and End are in the configured display timezone. End is nil for
	// open-ended or point-in-time appointments.
	Start time.Time
	End   *time.Time
}

// Category is a named color pair shared by the appointments of one source
// calendar. It drives both cell coloring and the legend, and is immutable
// once registered.
type Category struct {
	ID         string
	Name       string
	Text       color.RGB
	Background color.RGB
}
