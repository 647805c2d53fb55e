package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "calprint/internal/log"
	"calprint/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the timezone all appointments are converted to.
	// Nil means time.Local.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the inclusive expansion window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway recurrences. Zero selects the
	// default.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded appointments plus truncation info.
type ExpandResult struct {
	Appointments []model.Appointment
	// TruncatedEvents lists UIDs that hit the per-event cap.
	TruncatedEvents []string
}

// Expand turns parsed events into concrete appointment occurrences within
// the window: single events pass through, RRULE recurrences are expanded
// with EXDATE exceptions and RECURRENCE-ID overrides applied, and all
// results are normalized into the display timezone.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("ics: expand range end before start")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	all := make([]model.Appointment, 0)
	for uid, baseEvents := range baseByUID {
		overrides := overridesByUID[uid]
		truncated := false

		for _, ev := range baseEvents {
			appts, hitCap := expandEvent(ev, overrides, cfg)
			if hitCap {
				truncated = true
			}
			all = append(all, appts...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Error("ics expand truncated", errors.New("max occurrences reached"),
				"uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	result.Appointments = all
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Appointment, bool) {
	if ev.RawRRule == "" {
		return expandSingle(ev, overrides, cfg), false
	}
	return expandRecurring(ev, overrides, cfg)
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Appointment {
	if !rangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}

	start, end := ev.Start, ev.End
	if o, ok := overrideForStart(overrides, start); ok {
		start, end = o.Start, o.End
		ev = o
	}
	return []model.Appointment{makeAppointment(ev, start, end, cfg.DisplayLocation)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Appointment, bool) {
	out := make([]model.Appointment, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics rrule parse failed", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Between works in the event's own location.
	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())
	occTimes := set.Between(rangeStart, rangeEnd, true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	// A missing DTEND leaves ev.End zero; occurrences then stay open-ended
	// instead of inheriting a bogus duration.
	var duration time.Duration
	if !ev.End.IsZero() {
		duration = ev.End.Sub(ev.Start)
	}
	for _, occStart := range occTimes {
		var occEnd time.Time
		switch {
		case ev.AllDay:
			// All-day instances cover [date 00:00, next day 00:00) in the
			// event's own timezone.
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.Add(24 * time.Hour)
		case !ev.End.IsZero():
			occEnd = occStart.Add(duration)
		}

		instEv, start, end := ev, occStart, occEnd
		if o, ok := overrideForStart(overrides, occStart); ok {
			instEv, start, end = o, o.Start, o.End
		}
		out = append(out, makeAppointment(instEv, start, end, cfg.DisplayLocation))
	}
	return out, hitCap
}

// overrideForStart finds an override whose RECURRENCE-ID equals the given
// instance start.
func overrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		if ov.Recurrence.In(start.Location()).Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeAppointment converts one concrete instance into the boundary type
// consumed by the calendar builder, normalized into displayLoc.
func makeAppointment(ev ParsedEvent, start, end time.Time, displayLoc *time.Location) model.Appointment {
	startLocal := start.In(displayLoc)

	appt := model.Appointment{
		SourceID:    ev.Source.ID,
		UID:         ev.UID,
		InstanceKey: startLocal.Format(time.RFC3339Nano),
		Text:        ev.Summary,
		Note:        ev.Description,
		ColorHex:    ev.Color,
		Restricted:  ev.Restricted,
		AllDay:      ev.AllDay,
		Start:       startLocal,
	}
	if !end.IsZero() {
		endLocal := end.In(displayLoc)
		appt.End = &endLocal
	}
	return appt
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.IsZero() {
		aEnd = aStart
	}
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
