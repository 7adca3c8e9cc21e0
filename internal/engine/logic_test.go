package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-daytime/internal/config"
	"github.com/tartampluch/go-daytime/internal/day"
)

// TestNextOccurrence covers same-day, next-day and exact-hour cases.
func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		hour     int
		expected time.Time
	}{
		{
			name:     "Later today",
			now:      time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
			hour:     15,
			expected: time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC),
		},
		{
			name:     "Already passed",
			now:      time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
			hour:     8,
			expected: time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "Exactly now counts",
			now:      time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			hour:     12,
			expected: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "Year boundary",
			now:      time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC),
			hour:     2,
			expected: time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := nextOccurrence(tt.now, tt.hour)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, next)
		})
	}
}

func TestEventUID(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range day.All() {
		uid := eventUID(d)
		assert.Equal(t, uid, eventUID(d), "UID must be stable")
		assert.True(t, strings.HasSuffix(uid, "@"+config.ICalDomain))
		assert.False(t, seen[uid])
		seen[uid] = true
	}
}
