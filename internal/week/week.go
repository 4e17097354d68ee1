// Package week implements the calendar arithmetic behind weekly transaction
// grouping: ISO-8601 style week numbering (weeks start Monday, week 1 holds
// the year's first Thursday) and a year-qualified integer group id that stays
// stable across the Dec 31 / Jan 1 boundary.
package week

import (
	"fmt"
	"time"
)

var dayNames = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// DayOfWeek0 returns the weekday of d rebased so that Monday is 0 and
// Sunday is 6.
func DayOfWeek0(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

// DayOfYear returns the number of whole days elapsed since January 1 of d's
// year, so January 1 itself is 0. Time-of-day is dropped, which keeps the
// value identical for every timestamp on the same calendar date.
func DayOfYear(d time.Time) int {
	return d.YearDay() - 1
}

// WeekNumber0 returns the 0-based week number of d.
//
// The week that straddles a year boundary belongs to the new year when the
// new year's January 1 falls on Monday..Thursday, and to the old year
// otherwise. Dates that land before their own year's week 0 resolve to the
// last week of the previous year.
func WeekNumber0(d time.Time) int {
	yearStart := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location())
	nextYearStart := time.Date(d.Year()+1, time.January, 1, 0, 0, 0, 0, d.Location())
	yearStartDay := DayOfWeek0(yearStart)
	nextYearStartDay := DayOfWeek0(nextYearStart)

	delta := yearStartDay
	if yearStartDay >= 4 {
		delta = -((7 - yearStartDay) % 7)
	}
	if EndOfWeek(d).Year() != d.Year() && nextYearStartDay < 4 {
		return 0
	}
	result := floorDiv(DayOfYear(d)+delta, 7)
	if result < 0 {
		prevYearEnd := time.Date(d.Year()-1, time.December, 31, 0, 0, 0, 0, d.Location())
		return WeekNumber0(prevYearEnd)
	}
	return result
}

// WeekNumber returns the 1-based week number of d, for display.
func WeekNumber(d time.Time) int {
	return WeekNumber0(d) + 1
}

// StartOfWeek returns the Monday of d's week. The time-of-day of d is
// preserved, only whole days are subtracted.
func StartOfWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -DayOfWeek0(d))
}

// EndOfWeek returns the Sunday of d's week, time-of-day preserved.
func EndOfWeek(d time.Time) time.Time {
	return StartOfWeek(d).AddDate(0, 0, 6)
}

// DayName returns the two-letter name of d's weekday (Mo..Su).
func DayName(d time.Time) (string, error) {
	idx := DayOfWeek0(d)
	if idx < 0 || idx > 6 {
		return "", fmt.Errorf("DayName: weekday index %d out of range", idx)
	}
	return dayNames[idx], nil
}

// GroupIDFromDate returns the integer key identifying d's week, unique across
// years: weekNumber0 + year*100. Weeks numbered below 25 take the year of the
// week's Sunday, the rest take the year of the week's Monday. A week that
// straddles Dec 31 / Jan 1 therefore resolves to the same id from either side
// of the boundary.
func GroupIDFromDate(d time.Time) int {
	w := WeekNumber0(d)
	if w < 25 {
		return w + EndOfWeek(d).Year()*100
	}
	return w + StartOfWeek(d).Year()*100
}

// floorDiv divides rounding toward negative infinity, unlike Go's native
// truncated integer division.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
