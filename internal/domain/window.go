package domain

import "time"

// Window is a relative time range used to filter the ledger for aggregation.
type Window string

const (
	WindowDay     Window = "day"
	WindowWeek    Window = "week"
	WindowMonth   Window = "month"
	WindowAllTime Window = "all-time"
)

// Duration returns the lookback span for the window. All-time returns zero,
// meaning no cutoff. ok is false for unrecognized windows.
func (w Window) Duration() (d time.Duration, ok bool) {
	switch w {
	case WindowDay:
		return 24 * time.Hour, true
	case WindowWeek:
		return 7 * 24 * time.Hour, true
	case WindowMonth:
		// A month is a fixed 30 days, matching the ranking cadence this
		// service inherited rather than calendar months.
		return 30 * 24 * time.Hour, true
	case WindowAllTime:
		return 0, true
	}
	return 0, false
}

// ParseWindow maps user-facing window names to a Window. "all" is accepted as
// an alias for all-time.
func ParseWindow(s string) (Window, bool) {
	switch s {
	case "day", "daily":
		return WindowDay, true
	case "week", "weekly":
		return WindowWeek, true
	case "month", "monthly":
		return WindowMonth, true
	case "all", "all-time", "alltime":
		return WindowAllTime, true
	}
	return "", false
}
