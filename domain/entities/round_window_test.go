package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundWindows(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		now          time.Time
		nearClose    bool
		pastGrace    bool
		pastCooldown bool
	}{
		{
			name: "well before deadline",
			now:  deadline.Add(-10 * time.Minute),
		},
		{
			name:      "just outside lock window",
			now:       deadline.Add(-LockWindow - time.Second),
			nearClose: false,
		},
		{
			name:      "exactly at lock window",
			now:       deadline.Add(-LockWindow),
			nearClose: true,
		},
		{
			name:      "ninety seconds left",
			now:       deadline.Add(-90 * time.Second),
			nearClose: true,
		},
		{
			name: "at deadline",
			now:  deadline,
		},
		{
			name: "five seconds after deadline",
			now:  deadline.Add(5 * time.Second),
		},
		{
			name:      "exactly at grace",
			now:       deadline.Add(DrawGrace),
			pastGrace: true,
		},
		{
			name:         "exactly at cooldown",
			now:          deadline.Add(RoundCooldown),
			pastGrace:    true,
			pastCooldown: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.nearClose, NearClose(deadline, tt.now), "NearClose")
			assert.Equal(t, tt.pastGrace, PastCloseGrace(deadline, tt.now), "PastCloseGrace")
			assert.Equal(t, tt.pastCooldown, PastCooldown(deadline, tt.now), "PastCooldown")
		})
	}
}
