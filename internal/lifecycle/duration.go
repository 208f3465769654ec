package lifecycle

import "time"

// DurationMonths returns the number of whole calendar months from checkIn to
// checkOut, counting a month as reached when the same day of month (clamped
// to the month's last day) is reached. Stays shorter than a month count as
// one month.
func DurationMonths(checkIn, checkOut time.Time) int {
	y1, m1, _ := checkIn.Date()
	y2, m2, _ := checkOut.Date()

	months := (y2-y1)*12 + int(m2-m1)
	if months > 0 && dateOf(addMonths(checkIn, months)).After(dateOf(checkOut)) {
		months--
	}
	if months < 1 {
		return 1
	}
	return months
}

// addMonths moves t forward n months keeping the day of month, clamped to
// the last day of the target month
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
