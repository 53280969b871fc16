package entity

import (
	"strings"
	"time"
)

// DefaultLastSoldDate is stamped on stock synthesized from a legacy stock count.
var DefaultLastSoldDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 timestamps and plain calendar dates. Dates without
// a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Invalidf("invalid timestamp %q", value)
}
