// Package dates parses the timestamp layouts used by the warehouse feeds.
package dates

import (
	"strings"
	"time"
)

var layouts = []string{
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
	time.RFC3339,
}

// Parse tries each feed layout in local time and returns nil when none matches.
func Parse(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
