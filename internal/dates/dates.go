// Package dates holds the calendar math shared by the grid calculator and
// the page builder. Both must agree on month shapes, so this is the single
// implementation.
package dates

import (
	"fmt"
	"time"
)

// WeekStart selects which weekday opens a calendar week.
type WeekStart int

const (
	Sunday WeekStart = 0
	Monday WeekStart = 1
)

// ParseWeekStart maps the config strings "sunday" and "monday".
func ParseWeekStart(s string) (WeekStart, error) {
	switch s {
	case "sunday":
		return Sunday, nil
	case "monday":
		return Monday, nil
	default:
		return Sunday, fmt.Errorf("dates: unknown week start %q", s)
	}
}

func (ws WeekStart) String() string {
	if ws == Monday {
		return "monday"
	}
	return "sunday"
}

// DaysInMonth returns the number of calendar days in the given month,
// computed as day 0 of the following month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstOffset returns how many columns the 1st of the month sits away from
// the configured week start. Always in [0,6].
func FirstOffset(year int, month time.Month, ws WeekStart) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return ((int(first.Weekday())-int(ws))%7 + 7) % 7
}

// WeeksInMonth returns the number of week rows a month grid needs,
// including the partial first and last weeks.
func WeeksInMonth(year int, month time.Month, ws WeekStart) int {
	return (DaysInMonth(year, month) + FirstOffset(year, month, ws) + 6) / 7
}

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Weekdays returns the weekday display names rotated to the week start.
func Weekdays(ws WeekStart) [7]string {
	var out [7]string
	for i := 0; i < 7; i++ {
		out[i] = weekdayNames[(i+int(ws))%7]
	}
	return out
}
