package monitor

import "time"

// Beijing is the fixed reporting timezone. All day boundaries, minute buckets,
// and message timestamps use UTC+8 regardless of the host zone; there is no
// DST to account for.
var Beijing = time.FixedZone("UTC+8", 8*60*60)

// DateLabel renders the reporting-timezone calendar date, e.g. "2026-08-30".
func DateLabel(t time.Time) string {
	return t.In(Beijing).Format("2006-01-02")
}

// MinuteLabel renders the minute bucket used for dedup keys, e.g. "14:05".
func MinuteLabel(t time.Time) string {
	return t.In(Beijing).Format("15:04")
}

// TimestampLabel renders a full human-readable timestamp for messages.
func TimestampLabel(t time.Time) string {
	return t.In(Beijing).Format("2006-01-02 15:04:05")
}
