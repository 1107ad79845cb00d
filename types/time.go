package types

import "time"

// The platform transmits every time field as milliseconds since the Unix
// epoch. Values are stored as-is and converted to wall-clock on read.

// FromMillis converts a millisecond epoch timestamp to time.Time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// ToMillis converts a time.Time to a millisecond epoch timestamp.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}
