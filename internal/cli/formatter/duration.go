package formatter

import (
	"fmt"
	"strings"
	"time"
)

// UnknownDuration is shown when a timestamp cannot be parsed.
const UnknownDuration = "未知"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an API timestamp. Values without a zone are read in
// local time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatDuration renders the time between two API timestamps using the two
// largest units. An empty end means now.
func FormatDuration(start, end string) string {
	return FormatDurationAt(start, end, time.Now())
}

// FormatDurationAt is FormatDuration with an explicit clock for the empty-end case.
func FormatDurationAt(start, end string, now time.Time) string {
	from, err := ParseTimestamp(start)
	if err != nil {
		return UnknownDuration
	}
	to := now
	if end != "" {
		if to, err = ParseTimestamp(end); err != nil {
			return UnknownDuration
		}
	}
	return FormatElapsed(to.Sub(from))
}

// FormatElapsed renders d as days+hours, hours+minutes, or minutes.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		return "0分钟"
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%d天%d小时", days, hours)
	case hours > 0:
		return fmt.Sprintf("%d小时%d分钟", hours, minutes)
	default:
		return fmt.Sprintf("%d分钟", minutes)
	}
}
