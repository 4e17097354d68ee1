package week

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestWeekNumberBoundaries(t *testing.T) {
	tests := []struct {
		name string
		d    time.Time
		want int
	}{
		{"2019-12-31", date(2019, time.December, 31), 1},
		{"2020-01-01", date(2020, time.January, 1), 1},
		{"2020-12-31", date(2020, time.December, 31), 53},
		{"2021-01-01", date(2021, time.January, 1), 53},
		{"2021-12-31", date(2021, time.December, 31), 52},
		{"2022-01-01", date(2022, time.January, 1), 52},
		{"2022-01-02", date(2022, time.January, 2), 52},
		{"2022-01-03", date(2022, time.January, 3), 1},
		{"2023-01-01", date(2023, time.January, 1), 52},
		{"2023-01-02", date(2023, time.January, 2), 1},
		{"2024-01-01", date(2024, time.January, 1), 1},
		{"2024-01-07", date(2024, time.January, 7), 1},
		{"2024-01-08", date(2024, time.January, 8), 2},
		{"2024-05-12", date(2024, time.May, 12), 19},
		{"2024-05-13", date(2024, time.May, 13), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekNumber(tt.d); got != tt.want {
				t.Errorf("WeekNumber(%s) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestDayOfWeek0(t *testing.T) {
	// 2024-01-01 is a Monday.
	for i := 0; i < 7; i++ {
		d := date(2024, time.January, 1+i)
		if got := DayOfWeek0(d); got != i {
			t.Errorf("DayOfWeek0(%s) = %d, want %d", d.Format("2006-01-02"), got, i)
		}
	}
}

func TestDayName(t *testing.T) {
	names := []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
	for i, want := range names {
		d := date(2024, time.January, 1+i)
		got, err := DayName(d)
		if err != nil {
			t.Fatalf("DayName(%s) err = %v", d.Format("2006-01-02"), err)
		}
		if got != want {
			t.Errorf("DayName(%s) = %q, want %q", d.Format("2006-01-02"), got, want)
		}
	}
}

func TestIntraDayStability(t *testing.T) {
	d := date(2024, time.May, 13)
	times := []time.Time{
		d,
		d.Add(1 * time.Second),
		d.Add(11*time.Hour + 59*time.Minute),
		d.Add(23*time.Hour + 59*time.Minute + 59*time.Second),
	}
	for _, tm := range times {
		if got := DayOfYear(tm); got != DayOfYear(d) {
			t.Errorf("DayOfYear(%s) = %d, want %d", tm, got, DayOfYear(d))
		}
		if got := WeekNumber(tm); got != WeekNumber(d) {
			t.Errorf("WeekNumber(%s) = %d, want %d", tm, got, WeekNumber(d))
		}
		if got := GroupIDFromDate(tm); got != GroupIDFromDate(d) {
			t.Errorf("GroupIDFromDate(%s) = %d, want %d", tm, got, GroupIDFromDate(d))
		}
	}
}

func TestGroupIDSameWeek(t *testing.T) {
	// Week of 2020-12-28 (Mon) .. 2021-01-03 (Sun) spans the year boundary.
	monday := date(2020, time.December, 28)
	want := GroupIDFromDate(monday)
	for i := 1; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		if got := GroupIDFromDate(d); got != want {
			t.Errorf("GroupIDFromDate(%s) = %d, want %d", d.Format("2006-01-02"), got, want)
		}
	}
}

func TestGroupIDMonotonic(t *testing.T) {
	start := date(2018, time.January, 1)
	end := date(2026, time.December, 31)

	prev := GroupIDFromDate(start)
	if prev < 10000 {
		t.Fatalf("GroupIDFromDate(%s) = %d, want >= 10000", start.Format("2006-01-02"), prev)
	}
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		id := GroupIDFromDate(d)
		if id < 10000 {
			t.Fatalf("GroupIDFromDate(%s) = %d, want >= 10000", d.Format("2006-01-02"), id)
		}
		if DayOfWeek0(d) == 0 {
			if id <= prev {
				t.Fatalf("group id did not increase on Monday %s: %d -> %d", d.Format("2006-01-02"), prev, id)
			}
		} else if id != prev {
			t.Fatalf("group id changed mid-week on %s: %d -> %d", d.Format("2006-01-02"), prev, id)
		}
		prev = id
	}
}

func TestStartAndEndOfWeek(t *testing.T) {
	// Wednesday afternoon; the week runs Mon 2024-05-13 .. Sun 2024-05-19.
	d := time.Date(2024, time.May, 15, 14, 30, 0, 0, time.Local)

	start := StartOfWeek(d)
	if start.Year() != 2024 || start.Month() != time.May || start.Day() != 13 {
		t.Errorf("StartOfWeek = %s, want 2024-05-13", start.Format("2006-01-02"))
	}
	if start.Hour() != 14 || start.Minute() != 30 {
		t.Errorf("StartOfWeek should preserve time-of-day, got %s", start.Format(time.Kitchen))
	}

	end := EndOfWeek(d)
	if end.Year() != 2024 || end.Month() != time.May || end.Day() != 19 {
		t.Errorf("EndOfWeek = %s, want 2024-05-19", end.Format("2006-01-02"))
	}
}
