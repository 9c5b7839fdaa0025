package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatClock(0))
	assert.Equal(t, "00:00:05", FormatClock(5*time.Second))
	assert.Equal(t, "00:01:30", FormatClock(90*time.Second))
	assert.Equal(t, "01:00:00", FormatClock(time.Hour))
	assert.Equal(t, "99:59:59", FormatClock(99*time.Hour+59*time.Minute+59*time.Second))
	assert.Equal(t, "00:00:00", FormatClock(-time.Minute), "negative clamps to zero")
	assert.Equal(t, "00:00:01", FormatClock(1900*time.Millisecond), "sub-second truncates")
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:05:00", 5 * 60},
		{"01:30:00", 90 * 60},
		{"0130", 90},          // bare digits fill from the right
		{"1:30", 90},          // separators are ignored
		{"123456", 12*3600 + 34*60 + 56},
		{"9912345678", 34*3600 + 56*60 + 78}, // only the last six digits count
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseClockClampsToMax(t *testing.T) {
	got, err := ParseClock("99:99:99")
	require.NoError(t, err)
	assert.Equal(t, MaxClockSeconds, got)
}

func TestParseClockRejectsNoDigits(t *testing.T) {
	_, err := ParseClock("--:--:--")
	assert.Error(t, err)

	_, err = ParseClock("")
	assert.Error(t, err)
}

func TestFormatParseAgree(t *testing.T) {
	seconds, err := ParseClock(FormatClock(3*time.Hour + 25*time.Minute + 9*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3*3600+25*60+9, seconds)
}
