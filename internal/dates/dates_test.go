package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekStart(t *testing.T) {
	ws, err := ParseWeekStart("sunday")
	require.NoError(t, err)
	assert.Equal(t, Sunday, ws)

	ws, err = ParseWeekStart("monday")
	require.NoError(t, err)
	assert.Equal(t, Monday, ws)

	_, err = ParseWeekStart("Monday")
	assert.Error(t, err)
	_, err = ParseWeekStart("")
	assert.Error(t, err)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2024, time.January))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))

	// Leap year rules: divisible by 4, except centuries, except /400.
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 28, DaysInMonth(1900, time.February))
	assert.Equal(t, 29, DaysInMonth(2000, time.February))
	assert.Equal(t, 28, DaysInMonth(2100, time.February))
}

func TestFirstOffset(t *testing.T) {
	// April 1st 2024 is a Monday.
	assert.Equal(t, 0, FirstOffset(2024, time.April, Monday))
	assert.Equal(t, 1, FirstOffset(2024, time.April, Sunday))

	// September 1st 2024 is a Sunday.
	assert.Equal(t, 0, FirstOffset(2024, time.September, Sunday))
	assert.Equal(t, 6, FirstOffset(2024, time.September, Monday))
}

func TestFirstOffsetBounds(t *testing.T) {
	for year := 1990; year <= 2030; year++ {
		for m := time.January; m <= time.December; m++ {
			for _, ws := range []WeekStart{Sunday, Monday} {
				off := FirstOffset(year, m, ws)
				require.GreaterOrEqual(t, off, 0, "%d-%s", year, m)
				require.LessOrEqual(t, off, 6, "%d-%s", year, m)
			}
		}
	}
}

func TestWeeksInMonth(t *testing.T) {
	// April 2024, Monday start: 30 days, offset 0 -> 5 rows.
	assert.Equal(t, 5, WeeksInMonth(2024, time.April, Monday))

	// February 2026 starts on a Sunday and has 28 days: a perfect 4 rows.
	assert.Equal(t, 4, WeeksInMonth(2026, time.February, Sunday))

	// March 2025, Sunday start: 31 days, offset 6 -> 6 rows.
	assert.Equal(t, 6, WeeksInMonth(2025, time.March, Sunday))
}

func TestWeeksCoverAllDays(t *testing.T) {
	for year := 1990; year <= 2030; year++ {
		for m := time.January; m <= time.December; m++ {
			for _, ws := range []WeekStart{Sunday, Monday} {
				cells := WeeksInMonth(year, m, ws) * 7
				needed := FirstOffset(year, m, ws) + DaysInMonth(year, m)
				require.GreaterOrEqual(t, cells, needed, "%d-%s ws=%s", year, m, ws)
				require.Less(t, cells-needed, 7, "%d-%s ws=%s", year, m, ws)
			}
		}
	}
}

func TestWeekdays(t *testing.T) {
	sun := Weekdays(Sunday)
	assert.Equal(t, "Sunday", sun[0])
	assert.Equal(t, "Saturday", sun[6])

	mon := Weekdays(Monday)
	assert.Equal(t, "Monday", mon[0])
	assert.Equal(t, "Sunday", mon[6])
}
