package daywindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func TestRangeBounds(t *testing.T) {
	loc := seoul(t)

	instants := []time.Time{
		time.Date(2026, 3, 14, 0, 0, 0, 0, loc),
		time.Date(2026, 3, 14, 4, 59, 59, 999000000, loc),
		time.Date(2026, 3, 14, 5, 0, 0, 0, loc),
		time.Date(2026, 3, 14, 12, 30, 0, 0, loc),
		time.Date(2026, 3, 14, 23, 59, 59, 0, loc),
	}

	for _, now := range instants {
		start, end := Range(now, loc)

		assert.Equal(t, 24*time.Hour, end.Sub(start), "now=%s", now)
		assert.Equal(t, CutoffHour, start.Hour(), "now=%s", now)
		assert.Equal(t, CutoffHour, end.Hour(), "now=%s", now)
		assert.Zero(t, start.Minute())
		assert.Zero(t, start.Second())
		assert.Zero(t, start.Nanosecond())
		assert.Zero(t, end.Minute())
		assert.Zero(t, end.Second())
		assert.Zero(t, end.Nanosecond())

		assert.False(t, now.Before(start), "now=%s", now)
		assert.True(t, now.Before(end), "now=%s", now)
	}
}

func TestRangePreCutoffRollsBack(t *testing.T) {
	loc := seoul(t)

	early := time.Date(2026, 3, 14, 3, 0, 0, 0, loc)
	late := time.Date(2026, 3, 14, 5, 0, 0, 0, loc)

	earlyStart, _ := Range(early, loc)
	lateStart, _ := Range(late, loc)

	assert.Equal(t, 13, earlyStart.Day())
	assert.Equal(t, 14, lateStart.Day())
	assert.Equal(t, 24*time.Hour, lateStart.Sub(earlyStart))
}

func TestRangeAcceptsForeignZoneInstant(t *testing.T) {
	loc := seoul(t)

	// 2026-03-13 21:00 UTC is 2026-03-14 06:00 KST.
	now := time.Date(2026, 3, 13, 21, 0, 0, 0, time.UTC)
	start, end := Range(now, loc)

	assert.Equal(t, 14, start.Day())
	assert.True(t, now.After(start) || now.Equal(start))
	assert.True(t, now.Before(end))
}

func TestContains(t *testing.T) {
	loc := seoul(t)
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, loc)

	assert.True(t, contains(now, time.Date(2026, 3, 14, 5, 0, 0, 0, loc), loc))
	assert.True(t, contains(now, time.Date(2026, 3, 15, 4, 59, 59, 0, loc), loc))
	assert.False(t, contains(now, time.Date(2026, 3, 15, 5, 0, 0, 0, loc), loc))
	assert.False(t, contains(now, time.Date(2026, 3, 14, 4, 59, 59, 0, loc), loc))
}
