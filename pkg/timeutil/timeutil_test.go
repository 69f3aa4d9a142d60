package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDay(t *testing.T) {
	valid := []string{"2026-03-01", "1999-12-31", " 2026-03-01 "}
	for _, v := range valid {
		assert.True(t, IsValidDay(v), v)
	}

	invalid := []string{"", "March 1", "2026-3-1", "2026-13-01", "2026-02-30", "01-03-2026"}
	for _, v := range invalid {
		assert.False(t, IsValidDay(v), v)
	}
}

func TestCompareDays(t *testing.T) {
	assert.Equal(t, -1, CompareDays("2026-02-28", "2026-03-01"))
	assert.Equal(t, 0, CompareDays("2026-03-01", "2026-03-01"))
	assert.Equal(t, 1, CompareDays("2026-03-02", "2026-03-01"))
}

func TestDayStampRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	stamp := DayStamp(ts)
	assert.Equal(t, "2026-03-01", stamp)

	parsed, err := ParseDay(stamp)
	assert.NoError(t, err)
	assert.True(t, IsSameDay(ts, parsed))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 3, DaysBetween("2026-03-01", "2026-03-04"))
	assert.Equal(t, 3, DaysBetween("2026-03-04", "2026-03-01")) // абсолютное значение
	assert.Equal(t, 0, DaysBetween("garbage", "2026-03-01"))
}

func TestToday_IsValidStamp(t *testing.T) {
	assert.True(t, IsValidDay(Today()))
}
