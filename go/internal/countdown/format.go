package countdown

import (
	"fmt"
	"time"
)

// MaxClockSeconds is the largest duration a six-digit clock display can
// show (99:59:59).
const MaxClockSeconds = 99*3600 + 59*60 + 59

// FormatClock renders a duration as HH:MM:SS. Negative durations render as
// 00:00:00 and sub-second remainders are truncated, matching how a display
// counts whole seconds.
func FormatClock(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// ParseClock parses a clock string into whole seconds. Non-digit characters
// are ignored and only the last six digits are significant, so "1:30",
// "00:01:30" and "0130" all parse the same way a digital time-entry field
// would accept them. The result is clamped to MaxClockSeconds.
func ParseClock(value string) (int, error) {
	digits := make([]byte, 0, 6)
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return 0, fmt.Errorf("no digits in clock value %q", value)
	}
	if len(digits) > 6 {
		digits = digits[len(digits)-6:]
	}
	for len(digits) < 6 {
		digits = append([]byte{'0'}, digits...)
	}

	hours := int(digits[0]-'0')*10 + int(digits[1]-'0')
	minutes := int(digits[2]-'0')*10 + int(digits[3]-'0')
	seconds := int(digits[4]-'0')*10 + int(digits[5]-'0')

	total := hours*3600 + minutes*60 + seconds
	if total > MaxClockSeconds {
		total = MaxClockSeconds
	}
	return total, nil
}
