package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeClocker(t *testing.T) {
	before := time.Now()
	got := New().Now()
	assert.False(t, got.Before(before))
}

func TestManual(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewManual(start)

	assert.Equal(t, start, c.Now())

	c.Advance(10 * time.Minute)
	assert.Equal(t, start.Add(10*time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}
