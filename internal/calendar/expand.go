package calendar

import (
	"sort"
	"time"
)

// ellipsis marks truncated multi-day entries on continuation days.
const ellipsis = "…"

// expandForMonth materializes a page's entries for one month: single-day
// entries pass through when they fall inside the month, multi-day spans
// are cloned into one entry per in-month day, and everything outside the
// month is dropped.
//
// The first day of a span keeps the original start-time display and gains
// a trailing ellipsis; the last day is a continuation that carries the
// original end time with a leading ellipsis; middle days are continuations
// with both times suppressed and ellipses on both sides.
func expandForMonth(entries []*Entry, month time.Month, year int) []*Entry {
	out := make([]*Entry, 0, len(entries))

	for _, e := range entries {
		if !e.SpansDays() {
			if e.Start.Month() == month && e.Start.Year() == year {
				out = append(out, e)
			}
			continue
		}

		first := truncateToDay(e.Start)
		last := truncateToDay(*e.End)

		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			if d.Month() != month || d.Year() != year {
				continue
			}
			c := e.CloneForDay(d.Day(), month, year)
			switch {
			case d.Equal(first):
				c.HideEndTime = true
				c.Message = e.Message + ellipsis
			case d.Equal(last):
				c.Continuation = true
				c.HideStartTime = true
				end := *e.End
				c.End = &end
				c.Message = ellipsis + e.Message
			default:
				c.Continuation = true
				c.HideStartTime = true
				c.HideEndTime = true
				c.Message = ellipsis + e.Message + ellipsis
			}
			out = append(out, c)
		}
	}
	return out
}

// sortEntries orders entries by day, then start timestamp. The sort is
// stable so insertion order breaks remaining ties.
func sortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].Start.Before(entries[j].Start)
	})
}

// groupByDay buckets entries by day-of-month. Index 0 stays unused so that
// days map directly; no hashing needed for keys 1..31.
func groupByDay(entries []*Entry) [32][]*Entry {
	var byDay [32][]*Entry
	for _, e := range entries {
		if e.Day >= 1 && e.Day <= 31 {
			byDay[e.Day] = append(byDay[e.Day], e)
		}
	}
	return byDay
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
