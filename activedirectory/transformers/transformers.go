package transformers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	filetimeEpochOffset = 116444736000000000
	filetimeNever       = int64(9223372036854775807)

	filetimeTicksPerSecond = 10000000
)

// FromFileTime converts an AD large integer FILETIME (100ns intervals since 1601-01-01)
// into a UTC time. Zero, empty and the "never" sentinel yield nil.
func FromFileTime(value string) (*time.Time, error) {
	str := strings.TrimSpace(value)
	if str == "" || str == "0" {
		return nil, nil
	}

	ftVal, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FILETIME integer: %w", err)
	}

	if ftVal <= 0 || ftVal == filetimeNever {
		return nil, nil
	}

	// Split into seconds and remainder; the full range overflows int64 nanoseconds.
	intervals := ftVal - filetimeEpochOffset
	t := time.Unix(intervals/filetimeTicksPerSecond, (intervals%filetimeTicksPerSecond)*100).UTC()
	return &t, nil
}

// FormatFileTime renders a decoded FILETIME for display, "Never" when unset.
func FormatFileTime(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.Format(time.RFC3339)
}

// ParseUserAccountControl parses the userAccountControl integer attribute.
func ParseUserAccountControl(value string) (int64, error) {
	str := strings.TrimSpace(value)
	if str == "" {
		return 0, fmt.Errorf("userAccountControl is empty")
	}
	uac, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userAccountControl value %q: %w", str, err)
	}
	return uac, nil
}
