package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

// ClockToSeconds converts an "HH:mm:ss" clock string to seconds after
// midnight.
func ClockToSeconds(clock string) (int64, error) {
	if !clockPattern.MatchString(clock) {
		return 0, fmt.Errorf("clock %q must be in the format HH:mm:ss", clock)
	}

	parts := strings.Split(clock, ":")
	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	seconds, _ := strconv.Atoi(parts[2])

	return int64(hours)*3600 + int64(minutes)*60 + int64(seconds), nil
}

// SecondsToClock formats seconds after midnight as "HH:mm:ss".
func SecondsToClock(t int64) string {
	hours := t / 3600
	minutes := (t % 3600) / 60
	seconds := t % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// SubtractMinutes returns the clock string n minutes before the given
// "HH:mm:ss" clock, wrapping at midnight.
func SubtractMinutes(clock string, n int) (string, error) {
	secs, err := ClockToSeconds(clock)
	if err != nil {
		return "", err
	}

	const day = 24 * 3600
	secs = (secs - int64(n)*60) % day
	if secs < 0 {
		secs += day
	}
	return SecondsToClock(secs), nil
}
