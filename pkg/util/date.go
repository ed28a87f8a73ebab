package util

import "time"

// DateLayout is the stamp used in report file names.
const DateLayout = "2006-01-02"

// DateStamp formats t as YYYY-MM-DD in its own location.
func DateStamp(t time.Time) string { return t.Format(DateLayout) }

// LookbackWindow returns [now - months, now] truncated to whole days in UTC.
func LookbackWindow(now time.Time, months int) (from, to time.Time) {
	to = now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	from = to.AddDate(0, -months, 0)
	return from, to
}

// DatedFileName builds "<prefix><date><suffix>.csv".
func DatedFileName(prefix string, t time.Time, suffix string) string {
	return prefix + DateStamp(t) + suffix + ".csv"
}
