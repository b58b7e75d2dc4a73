package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_ExpiredAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	r := Record{ExpiresAt: now}

	assert.False(t, r.ExpiredAt(now.Add(-time.Nanosecond)))
	assert.True(t, r.ExpiredAt(now))
	assert.True(t, r.ExpiredAt(now.Add(time.Second)))
}

func TestRecord_Exhausted(t *testing.T) {
	assert.False(t, Record{Attempts: 4}.Exhausted(5))
	assert.True(t, Record{Attempts: 5}.Exhausted(5))
	assert.True(t, Record{Attempts: 6}.Exhausted(5))
}
