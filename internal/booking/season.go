package booking

import "time"

// NumPeriods is the number of teaching periods per day.
const NumPeriods = 5

// Season holds the four calendar dates that bound one reservation season.
//
// Bookings open in two phases: a short limited window accepts reservations
// for its own dates only, then the public window opens and the whole range
// up to PublicEnd becomes bookable.
type Season struct {
	Year         int
	PublicStart  time.Time
	PublicEnd    time.Time
	LimitedStart time.Time
	LimitedEnd   time.Time
}

// IsAvailable reports whether a date accepts reservations, given the current
// day. Both arguments are treated as civil dates; the time of day is ignored.
func (s Season) IsAvailable(today, date time.Time) bool {
	today = DateOnly(today)
	date = DateOnly(date)

	if date.After(DateOnly(s.PublicEnd)) {
		return false
	}
	if date.Before(DateOnly(s.LimitedStart)) {
		return false
	}
	if !today.Before(DateOnly(s.PublicStart)) {
		return true
	}
	return !date.Before(DateOnly(s.LimitedStart)) && !date.After(DateOnly(s.LimitedEnd))
}

// DateOnly truncates a time to its civil date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two times fall on the same civil date.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// WeekdayIndex converts a date to the stored weekday convention, where
// Monday is 0 and Sunday is 6. Go itself numbers Sunday as 0.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Date constructs a civil date in UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value into a civil date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return DateOnly(t).Format(time.DateOnly)
}
