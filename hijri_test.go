package ledger

import (
	"testing"
	"time"
)

func TestHijriFromGregorian_MonotonicWithinYear(t *testing.T) {
	// The tabular Hijri day count must never run backwards as the
	// Gregorian date advances one day at a time.
	prev := hijriFromGregorian(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	prevOrdinal := (prev.Year*12+prev.Month)*31 + prev.Day

	for i := 1; i < 400; i++ {
		d := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		h := hijriFromGregorian(d)
		ordinal := (h.Year*12+h.Month)*31 + h.Day
		if ordinal < prevOrdinal {
			t.Fatalf("hijriFromGregorian went backwards at +%d days: %v -> %v", i, prev, h)
		}
		prevOrdinal = ordinal
		prev = h
	}
}

func TestHijriFromGregorian_MonthWithinRange(t *testing.T) {
	for i := 0; i < 365; i++ {
		d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		h := hijriFromGregorian(d)
		if h.Month < 1 || h.Month > 12 {
			t.Errorf("hijriFromGregorian(%s).Month = %d, want [1,12]", d, h.Month)
		}
		if h.Day < 1 || h.Day > 30 {
			t.Errorf("hijriFromGregorian(%s).Day = %d, want [1,30]", d, h.Day)
		}
	}
}

func TestIsRamadanIsShaaban_MutuallyExclusive(t *testing.T) {
	for i := 0; i < 365; i++ {
		d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		if isRamadan(d) && isShaaban(d) {
			t.Errorf("%s classified as both Ramadan and Shaaban", d)
		}
	}
}

func TestJulianDayNumber_Increasing(t *testing.T) {
	a := julianDayNumber(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	b := julianDayNumber(time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC))
	if b != a+1 {
		t.Errorf("julianDayNumber did not advance by exactly 1 day: %d -> %d", a, b)
	}
}
