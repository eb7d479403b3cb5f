package contact

import "time"

// BirthdayWindow returns the month-day keys ("MMDD") covered by the
// inclusive window [today, today+days]. Matching on month-day instead of
// full dates keeps the query correct across a year boundary: a window
// opened in late December still yields the early-January keys.
//
// In a non-leap year a window that covers Feb 28 also includes "0229",
// so Feb 29 birthdays are celebrated on the 28th rather than skipped.
func BirthdayWindow(today time.Time, days int) []string {
	keys := make([]string, 0, days+2)

	for i := 0; i <= days; i++ {
		d := today.AddDate(0, 0, i)
		keys = append(keys, d.Format("0102"))

		if d.Month() == time.February && d.Day() == 28 && !isLeapYear(d.Year()) {
			keys = append(keys, "0229")
		}
	}

	return keys
}

// MonthDayKey formats a birthday for comparison against BirthdayWindow.
func MonthDayKey(d Date) string {
	return d.Format("0102")
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
