package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calprint/internal/color"
)

func mustEntry(t *testing.T, start time.Time, end *time.Time, msg string) *Entry {
	t.Helper()
	e, err := NewEntry(start, end, msg, color.Black, color.White)
	require.NoError(t, err)
	return e
}

func TestExpandSingleDayPassThrough(t *testing.T) {
	e := mustEntry(t, at(10, 9, 0), tp(at(10, 17, 0)), "Meeting")

	out := expandForMonth([]*Entry{e}, time.April, 2024)
	require.Len(t, out, 1)
	assert.Same(t, e, out[0])

	out = expandForMonth([]*Entry{e}, time.May, 2024)
	assert.Empty(t, out, "outside the month nothing is emitted")
}

func TestExpandMultiDay(t *testing.T) {
	// April 10th 18:00 through April 13th 10:00, end time display enabled.
	e := mustEntry(t, at(10, 18, 0), tp(at(13, 10, 0)), "Trip")
	e.HideEndTime = false

	out := expandForMonth([]*Entry{e}, time.April, 2024)
	require.Len(t, out, 4)

	first := out[0]
	assert.Equal(t, 10, first.Day)
	assert.False(t, first.Continuation)
	assert.Equal(t, "Trip…", first.Message)
	assert.Equal(t, "18h Trip…", first.Line(), "first day keeps the start time, never an end time")

	for _, mid := range out[1:3] {
		assert.True(t, mid.Continuation)
		assert.Equal(t, "…Trip…", mid.Message)
		assert.Equal(t, "…Trip…", mid.Line(), "middle days show no times")
	}
	assert.Equal(t, 11, out[1].Day)
	assert.Equal(t, 12, out[2].Day)

	last := out[3]
	assert.Equal(t, 13, last.Day)
	assert.True(t, last.Continuation)
	assert.Equal(t, "…Trip", last.Message)
	require.NotNil(t, last.End)
	assert.Equal(t, "…Trip 10h", last.Line(), "last day carries the original end time")
}

func TestExpandMultiDayHiddenEnd(t *testing.T) {
	e := mustEntry(t, at(10, 18, 0), tp(at(12, 10, 0)), "Trip")

	out := expandForMonth([]*Entry{e}, time.April, 2024)
	require.Len(t, out, 3)
	assert.Equal(t, "…Trip", out[2].Line(), "end time stays hidden when the source hides it")
}

func TestExpandAcrossMonthBoundary(t *testing.T) {
	// January 30th 2024 through February 2nd.
	start := time.Date(2024, time.January, 30, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 2, 10, 0, 0, 0, time.UTC)
	e := mustEntry(t, start, &end, "Fair")

	jan := expandForMonth([]*Entry{e}, time.January, 2024)
	require.Len(t, jan, 2)
	assert.Equal(t, 30, jan[0].Day)
	assert.Equal(t, "Fair…", jan[0].Message)
	assert.Equal(t, 31, jan[1].Day)
	assert.Equal(t, "…Fair…", jan[1].Message)

	feb := expandForMonth([]*Entry{e}, time.February, 2024)
	require.Len(t, feb, 2)
	assert.Equal(t, 1, feb[0].Day)
	assert.Equal(t, "…Fair…", feb[0].Message)
	assert.Equal(t, 2, feb[1].Day)
	assert.Equal(t, "…Fair", feb[1].Message)
	assert.True(t, feb[1].Continuation)
}

func TestSortEntriesStable(t *testing.T) {
	a := mustEntry(t, at(10, 9, 0), nil, "a")
	b := mustEntry(t, at(10, 9, 0), nil, "b")
	c := mustEntry(t, at(10, 8, 0), nil, "c")
	d := mustEntry(t, at(2, 20, 0), nil, "d")

	entries := []*Entry{a, b, c, d}
	sortEntries(entries)

	require.Len(t, entries, 4)
	assert.Equal(t, "d", entries[0].Message)
	assert.Equal(t, "c", entries[1].Message)
	assert.Equal(t, "a", entries[2].Message, "equal timestamps keep insertion order")
	assert.Equal(t, "b", entries[3].Message)
}

func TestGroupByDay(t *testing.T) {
	a := mustEntry(t, at(1, 9, 0), nil, "a")
	b := mustEntry(t, at(31, 9, 0), nil, "b")
	c := mustEntry(t, at(1, 12, 0), nil, "c")

	byDay := groupByDay([]*Entry{a, b, c})
	assert.Len(t, byDay[1], 2)
	assert.Len(t, byDay[31], 1)
	assert.Empty(t, byDay[2])
	assert.Empty(t, byDay[0])
}
