package recipe

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:[.,]\d+)?)S)?)?$`)

var errEmptyDuration = errors.New("duration has no components")

// Duration is an ISO-8601 duration such as "P0DT2H40M". Calendar and clock
// components are kept separately so the value can be written back unchanged.
type Duration struct {
	Years   int
	Months  int
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds float64
}

// ParseDuration parses an ISO-8601 duration. At least one component is required
// and the "T" designator must be followed by a clock component.
func ParseDuration(s string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Duration{}, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}
	if strings.HasSuffix(m[0], "T") {
		return Duration{}, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, errEmptyDuration)
	}
	if strings.Join(m[1:], "") == "" {
		return Duration{}, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, errEmptyDuration)
	}

	var d Duration
	ints := []*int{&d.Years, &d.Months, &d.Weeks, &d.Days, &d.Hours, &d.Minutes}
	for i, dst := range ints {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Duration{}, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
		*dst = n
	}
	if m[7] != "" {
		sec, err := strconv.ParseFloat(strings.Replace(m[7], ",", ".", 1), 64)
		if err != nil {
			return Duration{}, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
		d.Seconds = sec
	}
	return d, nil
}

// String returns the canonical form: zero components are dropped, zero is "PT0S".
func (d Duration) String() string {
	var sb strings.Builder
	sb.WriteByte('P')
	writePart := func(n int, unit byte) {
		if n != 0 {
			sb.WriteString(strconv.Itoa(n))
			sb.WriteByte(unit)
		}
	}
	writePart(d.Years, 'Y')
	writePart(d.Months, 'M')
	writePart(d.Weeks, 'W')
	writePart(d.Days, 'D')
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		sb.WriteByte('T')
		writePart(d.Hours, 'H')
		writePart(d.Minutes, 'M')
		if d.Seconds != 0 {
			sb.WriteString(strconv.FormatFloat(d.Seconds, 'f', -1, 64))
			sb.WriteByte('S')
		}
	}
	if sb.Len() == 1 {
		return "PT0S"
	}
	return sb.String()
}

// Std converts to a time.Duration using 365-day years, 30-day months and 7-day weeks.
func (d Duration) Std() time.Duration {
	const day = 24 * time.Hour
	total := time.Duration(d.Years)*365*day +
		time.Duration(d.Months)*30*day +
		time.Duration(d.Weeks)*7*day +
		time.Duration(d.Days)*day +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute
	return total + time.Duration(d.Seconds*float64(time.Second))
}
