package asq3

import "time"

// DaysPerMonth is the mean Gregorian month length used when ages in days are
// compared against interval ages in months.
const DaysPerMonth = 30.4375

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AgeInDays counts whole calendar days between birthday and the reference date.
func AgeInDays(birthday, reference time.Time) int {
	return int(dateOnly(reference).Sub(dateOnly(birthday)).Hours() / 24)
}

// AgeInMonths counts completed calendar months between birthday and the
// reference date. A month is completed once the day of month is reached.
func AgeInMonths(birthday, reference time.Time) int {
	by, bm, bd := birthday.Date()
	ry, rm, rd := reference.Date()

	months := (ry-by)*12 + int(rm) - int(bm)
	if rd < bd {
		months--
	}
	return months
}
