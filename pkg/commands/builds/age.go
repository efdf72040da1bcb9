package builds

import (
	"fmt"
	"time"
)

// Age renders how long ago t was in the largest whole unit that fits, e.g. "3 days ago"
func Age(t, now time.Time) string {
	offset := now.Sub(t)

	switch days := offset.Hours() / 24; {
	case days < 1 && offset.Hours() < 1:
		return pluralise(offset.Minutes(), "minute")
	case days < 1:
		return pluralise(offset.Hours(), "hour")
	case days < 30:
		return pluralise(days, "day")
	case days/30 < 24:
		return pluralise(days/30, "month")
	default:
		return pluralise(days/30/12, "year")
	}
}

func pluralise(d float64, subject string) string {
	n := int(d)
	if n != 1 {
		subject += "s"
	}
	return fmt.Sprintf("%d %s ago", n, subject)
}
