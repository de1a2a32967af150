package util

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// NormalizeDate converts a source date string into YYYY-MM-DD. Unparseable
// or absent input degrades to "", never to a guessed date.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// ISO-ish strings: the date is the first 10 chars.
	if len(raw) >= 10 {
		if t, err := time.Parse(DateLayout, raw[:10]); err == nil {
			return t.Format(DateLayout)
		}
	}

	// Long-form dates ("January 13, 2026", "Feb 20, 2026").
	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout)
		}
	}
	return ""
}

// DateFromMillis converts an epoch-milliseconds timestamp to YYYY-MM-DD.
func DateFromMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(DateLayout)
}
