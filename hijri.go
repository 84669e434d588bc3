package ledger

import "time"

// hijriDate is a date in the tabular Islamic calendar: year, month (1-12),
// day (1-30).
type hijriDate struct {
	Year  int
	Month int
	Day   int
}

// No example in the retrieval pack implements Gregorian/Hijri conversion;
// this is the standard arithmetic (tabular) Hijri calendar algorithm,
// built on stdlib time/Julian-day arithmetic rather than grounded on any
// pack dependency. See DESIGN.md for the justification.

// julianDayNumber returns the Julian Day Number for the given Gregorian
// civil date at local midnight.
func julianDayNumber(d time.Time) int {
	y, m, day := d.Date()
	a := (14 - int(m)) / 12
	y2 := y + 4800 - a
	m2 := int(m) + 12*a - 3
	jdn := day + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
	return jdn
}

// hijriFromGregorian converts a Gregorian date to the tabular Islamic
// calendar using the civil (Friday epoch) variant, epoch JDN 1948440.
func hijriFromGregorian(d time.Time) hijriDate {
	jdn := julianDayNumber(d)
	const islamicEpoch = 1948440

	l := jdn - islamicEpoch + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29

	month := (24 * l) / 709
	day := l - (709*month)/24
	year := 30*n + j - 30

	return hijriDate{Year: year, Month: month, Day: day}
}

// isRamadan reports whether d falls in the 9th Hijri month.
func isRamadan(d time.Time) bool {
	return hijriFromGregorian(d).Month == 9
}

// isShaaban reports whether d falls in the 8th Hijri month.
func isShaaban(d time.Time) bool {
	return hijriFromGregorian(d).Month == 8
}
