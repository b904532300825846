package result

import "time"

// dateLayouts run strict first, then the lenient shapes seen in stored
// documents.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses an engine datetime value. A list retries on its
// first element. ok is false when nothing could be parsed.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		return parseDateString(v)
	case []any:
		if len(v) == 0 {
			return time.Time{}, false
		}
		s, ok := v[0].(string)
		if !ok {
			return time.Time{}, false
		}
		return parseDateString(s)
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
