package persistence

import "time"

// Timestamps are stored as unix milliseconds. Zero marks an absent
// value in both directions.

func toUnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

func fromUnixMillis(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}

	return time.UnixMilli(v)
}
