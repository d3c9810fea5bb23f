package blacklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeTTL(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		max       time.Duration
		expiresAt time.Time
		expected  time.Duration
	}{
		{
			name:      "remaining validity shorter than cap",
			max:       time.Hour,
			expiresAt: now.Add(10 * time.Minute),
			expected:  10 * time.Minute,
		},
		{
			name:      "remaining validity longer than cap",
			max:       time.Hour,
			expiresAt: now.Add(24 * time.Hour),
			expected:  time.Hour,
		},
		{
			name:      "no cap keeps full remaining validity",
			max:       0,
			expiresAt: now.Add(24 * time.Hour),
			expected:  24 * time.Hour,
		},
		{
			name:      "expired token yields non positive ttl",
			max:       time.Hour,
			expiresAt: now.Add(-time.Minute),
			expected:  -time.Minute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, computeTTL(tt.max, tt.expiresAt, now))
		})
	}
}
