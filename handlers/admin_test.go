package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	at := time.Date(2026, 8, 15, 23, 59, 59, 0, loc)
	got := startOfDay(at)

	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestWeekAgo(t *testing.T) {
	at := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 8, 12, 0, 0, 0, time.UTC), weekAgo(at))
}

func TestMonthAgo(t *testing.T) {
	at := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC), monthAgo(at))

	// Calendar-month arithmetic, not a fixed 30 days.
	march := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), monthAgo(march))
}
