package pets

import (
	"fmt"
	"time"
)

// Age describe la edad en años y meses completos: "7 months", "2 years", "2 years, 3 months".
func Age(birthDate, now time.Time) string {
	months := fullMonths(birthDate, now)
	years := months / 12
	rest := months % 12

	if years == 0 {
		return plural(months, "month")
	}
	if rest == 0 {
		return plural(years, "year")
	}
	return plural(years, "year") + ", " + plural(rest, "month")
}

// fullMonths cuenta meses completos. Si to es el último día de su mes, el mes
// cuenta como cumplido aunque from tenga un día mayor (31 ene -> 28 feb = 1).
func fullMonths(from, to time.Time) int {
	n := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() && !lastDayOfMonth(to) {
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}

func lastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
