package booking

import (
	"testing"
	"time"
)

func testSeason() Season {
	return Season{
		Year:         2021,
		PublicStart:  Date(2021, time.June, 3),
		PublicEnd:    Date(2021, time.July, 10),
		LimitedStart: Date(2021, time.June, 21),
		LimitedEnd:   Date(2021, time.June, 26),
	}
}

func TestSeasonIsAvailable(t *testing.T) {
	season := testSeason()

	cases := []struct {
		name  string
		today time.Time
		date  time.Time
		want  bool
	}{
		{
			name:  "after public end is never available",
			today: Date(2021, time.June, 25),
			date:  Date(2021, time.July, 11),
			want:  false,
		},
		{
			name:  "before limited start is never available",
			today: Date(2021, time.June, 25),
			date:  Date(2021, time.June, 20),
			want:  false,
		},
		{
			name:  "public window open covers limited start",
			today: Date(2021, time.June, 3),
			date:  Date(2021, time.June, 21),
			want:  true,
		},
		{
			name:  "public window open covers public end",
			today: Date(2021, time.June, 3),
			date:  Date(2021, time.July, 10),
			want:  true,
		},
		{
			name:  "before public start only limited window accepts",
			today: Date(2021, time.June, 1),
			date:  Date(2021, time.June, 22),
			want:  true,
		},
		{
			name:  "before public start limited end inclusive",
			today: Date(2021, time.June, 1),
			date:  Date(2021, time.June, 26),
			want:  true,
		},
		{
			name:  "before public start rejects dates past limited end",
			today: Date(2021, time.June, 1),
			date:  Date(2021, time.June, 27),
			want:  false,
		},
		{
			name:  "before public start rejects mid-season date outside limited window",
			today: Date(2021, time.June, 1),
			date:  Date(2021, time.June, 15),
			want:  false,
		},
		{
			name:  "today exactly at public start opens the full window",
			today: Date(2021, time.June, 3),
			date:  Date(2021, time.July, 1),
			want:  true,
		},
		{
			name:  "time of day is ignored",
			today: time.Date(2021, time.June, 1, 23, 59, 0, 0, time.UTC),
			date:  time.Date(2021, time.June, 22, 8, 30, 0, 0, time.UTC),
			want:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := season.IsAvailable(tc.today, tc.date); got != tc.want {
				t.Fatalf("IsAvailable(%s, %s) = %v, want %v", FormatDate(tc.today), FormatDate(tc.date), got, tc.want)
			}
		})
	}
}

func TestSeasonIsAvailableSweep(t *testing.T) {
	season := testSeason()
	today := Date(2021, time.June, 3)

	for date := Date(2021, time.June, 21); !date.After(Date(2021, time.July, 10)); date = date.AddDate(0, 0, 1) {
		if !season.IsAvailable(today, date) {
			t.Fatalf("expected %s to be available once the public window is open", FormatDate(date))
		}
	}
	for date := Date(2021, time.July, 11); !date.After(Date(2021, time.July, 31)); date = date.AddDate(0, 0, 1) {
		if season.IsAvailable(today, date) {
			t.Fatalf("expected %s after the public end to be unavailable", FormatDate(date))
		}
	}
	for date := Date(2021, time.June, 1); date.Before(Date(2021, time.June, 21)); date = date.AddDate(0, 0, 1) {
		if season.IsAvailable(today, date) {
			t.Fatalf("expected %s before the limited start to be unavailable", FormatDate(date))
		}
	}
}

func TestWeekdayIndex(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{Date(2021, time.June, 21), 0}, // Monday
		{Date(2021, time.June, 22), 1}, // Tuesday
		{Date(2021, time.June, 26), 5}, // Saturday
		{Date(2021, time.June, 27), 6}, // Sunday
	}

	for _, tc := range cases {
		if got := WeekdayIndex(tc.date); got != tc.want {
			t.Fatalf("WeekdayIndex(%s) = %d, want %d", FormatDate(tc.date), got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2021-06-22")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if !parsed.Equal(Date(2021, time.June, 22)) {
		t.Fatalf("ParseDate = %s, want 2021-06-22", parsed)
	}

	if _, err := ParseDate("06/22/2021"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
