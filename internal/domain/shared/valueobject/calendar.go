package valueobject

import "time"

// DateLayout is the civil date wire format
const DateLayout = "2006-01-02"

// DateOf truncates t to its civil date, expressed as midnight UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the civil date of now as observed in loc
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// AddCalendarMonths adds n calendar months to the civil date of t.
// When the target month is shorter than the original day of month, the result
// clamps to the last day of that month: Jan 30 + 1 month is Feb 28 (or 29), never Mar 2.
func AddCalendarMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()

	// normalize the target month before picking a day
	total := int(m) - 1 + n
	ty := y + total/12
	tm := total % 12
	if tm < 0 {
		tm += 12
		ty--
	}
	month := time.Month(tm + 1)

	if last := daysIn(ty, month); d > last {
		d = last
	}
	return time.Date(ty, month, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD civil date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
