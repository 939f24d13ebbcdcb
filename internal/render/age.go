package render

import "fmt"

// Calendar approximations used by Gerrit-style age display: a month is 31
// days and a year is 12 such months, so a change only becomes "1 year" old
// slightly past 365 days.
const (
	minuteSeconds = int64(60)
	hourSeconds   = 60 * minuteSeconds
	daySeconds    = 24 * hourSeconds
	monthSeconds  = 31 * daySeconds
	yearSeconds   = 12 * monthSeconds
)

var ageUnits = []struct {
	name    string
	seconds int64
}{
	{"year", yearSeconds},
	{"month", monthSeconds},
	{"day", daySeconds},
	{"hour", hourSeconds},
	{"minute", minuteSeconds},
}

// Age renders an age in seconds using its largest applicable unit, rounding
// down. The unit is pluralized only when the count exceeds 2; counts of 1
// and 2 keep the singular form. Anything under a minute is "just now".
func Age(seconds int64) string {
	for _, u := range ageUnits {
		if seconds < u.seconds {
			continue
		}
		n := seconds / u.seconds
		name := u.name
		if n > 2 {
			name += "s"
		}
		return fmt.Sprintf("%d %s", n, name)
	}
	return "just now"
}
