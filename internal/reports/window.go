package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"invoiceflow/internal/models"
)

// Window is a named reporting period.
type Window string

const (
	WindowToday      Window = "today"
	WindowLast7Days  Window = "last_7_days"
	WindowLast30Days Window = "last_30_days"
	WindowThisWeek   Window = "this_week"
	WindowThisMonth  Window = "this_month"
	WindowThisYear   Window = "this_year"
	WindowLastYear   Window = "last_year"
	WindowAllTime    Window = "all_time"
	WindowCustom     Window = "custom"
)

// DateLayout is the ISO date format of sale dates and custom bounds.
const DateLayout = "2006-01-02"

// monthlyThreshold is the span above which points are bucketed by month.
const monthlyThreshold = 90 * 24 * time.Hour

var (
	ErrUnknownWindow = errors.New("unknown report window")
	ErrCustomRange   = errors.New("custom window needs from and to dates with from <= to")
)

var windows = map[Window]bool{
	WindowToday: true, WindowLast7Days: true, WindowLast30Days: true,
	WindowThisWeek: true, WindowThisMonth: true, WindowThisYear: true,
	WindowLastYear: true, WindowAllTime: true, WindowCustom: true,
}

// ParseWindow validates a window name; empty means this_month.
func ParseWindow(s string) (Window, error) {
	if s == "" {
		return WindowThisMonth, nil
	}
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if !windows[w] {
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
	return w, nil
}

// Range is an inclusive, day-normalized reporting interval.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Monthly reports whether the range spans more than 90 days.
func (r Range) Monthly() bool {
	return r.End.Sub(r.Start) > monthlyThreshold
}

// StartOfDay is midnight of t's date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay is 23:59:59.999 of t's date in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// Query selects the window and, for custom, its ISO date bounds.
type Query struct {
	Window Window `json:"window"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// Bounds resolves a query against now. all_time starts at the earliest
// parseable sale date among records.
func Bounds(q Query, now time.Time, loc *time.Location, records []models.SalesRecord) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := StartOfDay(now, loc)
	end := EndOfDay(now, loc)

	switch q.Window {
	case WindowToday:
		return Range{today, end}, nil
	case WindowLast7Days:
		return Range{today.AddDate(0, 0, -6), end}, nil
	case WindowLast30Days:
		return Range{today.AddDate(0, 0, -29), end}, nil
	case WindowThisWeek:
		return Range{today.AddDate(0, 0, -int(today.Weekday())), end}, nil
	case WindowThisMonth:
		return Range{time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc), end}, nil
	case WindowThisYear:
		return Range{time.Date(today.Year(), 1, 1, 0, 0, 0, 0, loc), end}, nil
	case WindowLastYear:
		start := time.Date(today.Year()-1, 1, 1, 0, 0, 0, 0, loc)
		return Range{start, EndOfDay(time.Date(today.Year()-1, 12, 31, 0, 0, 0, 0, loc), loc)}, nil
	case WindowAllTime:
		start := today
		for _, r := range records {
			if d, ok := ParseSaleDate(r.SaleDate, loc); ok && d.Before(start) {
				start = d
			}
		}
		return Range{start, end}, nil
	case WindowCustom:
		from, err := time.ParseInLocation(DateLayout, q.From, loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: from %q", ErrCustomRange, q.From)
		}
		to, err := time.ParseInLocation(DateLayout, q.To, loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: to %q", ErrCustomRange, q.To)
		}
		if to.Before(from) {
			return Range{}, ErrCustomRange
		}
		return Range{from, EndOfDay(to, loc)}, nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrUnknownWindow, q.Window)
}

// ParseSaleDate reads the date part of an ISO date or timestamp.
func ParseSaleDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s[:len(DateLayout)], loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
