package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeatLockLive(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	l := SeatLock{ExpiresAt: now.Add(time.Minute)}

	assert.True(t, l.Live(now))
	assert.True(t, l.Live(now.Add(59*time.Second)))
	// Expiry is exclusive: a lock is dead at its own expiry instant.
	assert.False(t, l.Live(now.Add(time.Minute)))
	assert.False(t, l.Live(now.Add(2*time.Minute)))
}
