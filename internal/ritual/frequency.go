package ritual

import (
	"strings"
	"time"
)

const FrequencyDaily = "daily"

var weekdaySlugs = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// DueOn reports whether a system with the given frequency is due on weekday.
// Frequency is either "daily" or a comma list of three-letter weekday tokens
// ("mon,wed,fri"). Unknown tokens are ignored; an empty frequency means daily.
func DueOn(frequency string, weekday time.Weekday) bool {
	frequency = strings.ToLower(strings.TrimSpace(frequency))
	if frequency == "" || frequency == FrequencyDaily {
		return true
	}
	slug := weekdaySlugs[weekday]
	for _, tok := range strings.Split(frequency, ",") {
		if strings.TrimSpace(tok) == slug {
			return true
		}
	}
	return false
}
