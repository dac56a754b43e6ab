package service

import "time"

// Calendar decides what "today" means for credit resets and analytics.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

// NewCalendar returns a calendar in loc using the wall clock. A nil loc means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, Now: time.Now}
}

// Today is the start of the current day.
func (c Calendar) Today() time.Time {
	return StartOfDay(c.Now(), c.Location)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
