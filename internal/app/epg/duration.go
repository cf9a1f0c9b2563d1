package epg

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Restricted ISO-8601 duration: days/hours/minutes/seconds only. Year and
// month designators are deliberately absent from the grammar, so "P1Y" fails
// instead of parsing as zero elapsed time.
var durationRegex = regexp.MustCompile(`^P(?:([0-9]+)D)?(?:T(?:([0-9]+)H)?(?:([0-9]+)M)?(?:([0-9]+(?:\.[0-9]+)?)S)?)?$`)

// ParseDuration parses a restricted ISO-8601 duration such as "P1DT2H" or
// "PT1H30M" into an elapsed time.
func ParseDuration(s string) (time.Duration, error) {
	matches := durationRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: invalid duration %q", ErrFormat, s)
	}

	// Bare "P"/"PT" with no components is also a format error.
	var found bool
	var d time.Duration
	for i, unit := range []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second} {
		m := matches[i+1]
		if m == "" {
			continue
		}
		found = true

		if unit == time.Second {
			// Seconds may be fractional.
			secs, err := strconv.ParseFloat(m, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: invalid duration %q", ErrFormat, s)
			}
			d += time.Duration(secs * float64(time.Second))
			continue
		}

		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid duration %q", ErrFormat, s)
		}
		d += time.Duration(n) * unit
	}
	if !found {
		return 0, fmt.Errorf("%w: empty duration %q", ErrFormat, s)
	}

	return d, nil
}
