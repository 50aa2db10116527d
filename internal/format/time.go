package format

import "time"

// filetimeOffset is the difference, in 100ns units, between the FILETIME
// epoch (1601-01-01) and the Unix epoch (1970-01-01).
const filetimeOffset = 116444736000000000
const filetimeUnit = 100

// FiletimeToTime converts a little-endian Windows FILETIME (100ns ticks
// since 1601-01-01) to a UTC time.Time.
func FiletimeToTime(v uint64) time.Time {
	if v <= filetimeOffset {
		return time.Unix(0, 0).UTC()
	}
	ns := int64((v - filetimeOffset) * filetimeUnit)
	return time.Unix(ns/int64(time.Second), ns%int64(time.Second)).UTC()
}

// TimeToFiletime converts a time.Time to a Windows FILETIME value. Used
// only by test fixtures that construct synthetic PC/TC payloads.
func TimeToFiletime(t time.Time) uint64 {
	ns := t.UnixNano()
	if ns < 0 {
		ns = 0
	}
	return uint64(ns)/filetimeUnit + filetimeOffset
}
