// Package datemath provides proleptic Gregorian calendar arithmetic for
// expanding transition rules into concrete dates. It deliberately avoids
// time.Location: the results feed the construction of local time data, so
// leaning on the standard library's zone handling would be circular.
package datemath

// IsLeapYear determines if the year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in a given month for a specific year.
func DaysInMonth(month, year int) int {
	if month == 2 {
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}
	return 31
}

// DayOfWeek calculates the day of the week for a given date,
// where 0=Sunday, 1=Monday, ..., 6=Saturday.
func DayOfWeek(day, month, year int) int {
	// Zeller's Congruence algorithm adjustment for Gregorian calendar
	if month < 3 {
		month += 12
		year -= 1
	}
	k := year % 100
	j := year / 100
	h := (day + ((13 * (month + 1)) / 5) + k + (k / 4) + (j / 4) + (5 * j)) % 7
	// Adjust result to fit Sunday=0, Monday=1, ..., Saturday=6
	return (h + 6) % 7
}

// LastWeekdayOfMonth finds the day of the last instance of a given weekday
// in a specific month and year.
func LastWeekdayOfMonth(year, month, weekday int) int {
	lastDay := DaysInMonth(month, year)
	lastDayWeekday := DayOfWeek(lastDay, month, year)

	// Subtract from the last day to reach the last instance of the weekday.
	offset := (lastDayWeekday - weekday + 7) % 7
	return lastDay - offset
}

// NthWeekdayOfMonth finds the day of the n-th instance (n in 1 to 5) of a
// given weekday in a specific month and year. An n of 5 means the last
// instance, which may be the fourth in months where a fifth does not exist.
func NthWeekdayOfMonth(year, month, n, weekday int) int {
	firstDayWeekday := DayOfWeek(1, month, year)
	day := 1 + (weekday-firstDayWeekday+7)%7 + (n-1)*7
	if day > DaysInMonth(month, year) {
		day -= 7
	}
	return day
}

// daysBeforeMonth[m-1] is the number of days in a non-leap year before the
// first of month m.
var daysBeforeMonth = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// JulianDate resolves a day-of-year in the range 1 to 365 that never counts
// February 29, so day 59 is always February 28 and day 60 is always March 1.
func JulianDate(year, n int) (month, day int) {
	for m := 12; m >= 1; m-- {
		if n > daysBeforeMonth[m-1] {
			return m, n - daysBeforeMonth[m-1]
		}
	}
	return 1, n
}

// YearDate resolves a zero-based day-of-year in the range 0 to 365 that
// counts February 29 in leap years. In non-leap years day 365 wraps into
// January 1 of the following year and yearAdd is 1; otherwise it is 0.
func YearDate(year, n int) (yearAdd, month, day int) {
	n++ // one-based for the scan below
	leap := 0
	if IsLeapYear(year) {
		leap = 1
	}
	if n > 365+leap {
		return 1, 1, n - 365 - leap
	}
	for m := 12; m >= 1; m-- {
		before := daysBeforeMonth[m-1]
		if m > 2 {
			before += leap
		}
		if n > before {
			return 0, m, n - before
		}
	}
	return 0, 1, n
}
