package domain

import "time"

// Counter is the fixed-window state for one rate-limit key.
type Counter struct {
	Count   int64
	ResetAt time.Time
}

// Expired reports whether the window has closed at now.
func (c Counter) Expired(now time.Time) bool {
	return !now.Before(c.ResetAt)
}

// Next returns the counter after one more hit at now. A closed or unset
// window restarts at count 1 and ends at now+window.
func (c Counter) Next(window time.Duration, now time.Time) Counter {
	if c.Expired(now) {
		return Counter{Count: 1, ResetAt: now.Add(window)}
	}
	return Counter{Count: c.Count + 1, ResetAt: c.ResetAt}
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration // zero when Allowed
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below one.
func (d Decision) RetryAfterSeconds() int64 {
	secs := int64((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// UnidentifiedPolicy decides what happens to requests whose client key
// could not be determined.
type UnidentifiedPolicy string

const (
	// UnidentifiedShared counts all unidentified clients in one bucket.
	UnidentifiedShared UnidentifiedPolicy = "shared"

	// UnidentifiedOpen lets unidentified clients through uncounted.
	UnidentifiedOpen UnidentifiedPolicy = "open"
)

// UnidentifiedKey is the bucket shared by unidentified clients.
const UnidentifiedKey = "unidentified"

// Valid reports whether p is a known policy.
func (p UnidentifiedPolicy) Valid() bool {
	return p == UnidentifiedShared || p == UnidentifiedOpen
}
