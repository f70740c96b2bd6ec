package entities

import "time"

const (
	// LockWindow is how long before the deadline a round is locked
	LockWindow = 2 * time.Minute
	// DrawGrace is how long after the deadline the draw waits for late ticket writes
	DrawGrace = 10 * time.Second
	// RoundCooldown is the minimum delay between a round's deadline and the next round
	RoundCooldown = 2 * time.Minute
)

// NearClose is true when 0 < deadline-now <= LockWindow
func NearClose(deadline, now time.Time) bool {
	remaining := deadline.Sub(now)
	return remaining > 0 && remaining <= LockWindow
}

// PastCloseGrace is true when now-deadline >= DrawGrace
func PastCloseGrace(deadline, now time.Time) bool {
	return now.Sub(deadline) >= DrawGrace
}

// PastCooldown is true when now-lastDeadline >= RoundCooldown
func PastCooldown(lastDeadline, now time.Time) bool {
	return now.Sub(lastDeadline) >= RoundCooldown
}
