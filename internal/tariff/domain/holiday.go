package domain

import "time"

// Easter computes the Gregorian Easter Sunday of a year (Meeus/Jones/Butcher).
// The movable national holidays derive from it.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// IsNationalHoliday reports whether t falls on a Brazilian national civil
// holiday, movable feasts included.
func IsNationalHoliday(t time.Time) bool {
	year, month, day := t.Date()

	switch {
	case month == time.January && day == 1: // Confraternização Universal
		return true
	case month == time.April && day == 21: // Tiradentes
		return true
	case month == time.May && day == 1: // Dia do Trabalho
		return true
	case month == time.September && day == 7: // Independência
		return true
	case month == time.October && day == 12: // Nossa Senhora Aparecida
		return true
	case month == time.November && day == 2: // Finados
		return true
	case month == time.November && day == 15: // Proclamação da República
		return true
	case month == time.December && day == 25: // Natal
		return true
	}

	easter := Easter(year)
	for _, offset := range []int{-47, -2, 60} { // Carnaval, Sexta-feira Santa, Corpus Christi
		feast := easter.AddDate(0, 0, offset)
		if feast.Month() == month && feast.Day() == day {
			return true
		}
	}
	return false
}
