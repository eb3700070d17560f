package calendar

import (
	calendar "google.golang.org/api/calendar/v3"

	"github.com/meetwhen/meetwhen/internal/interval"
)

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	Primary     bool
	AccessRole  string // "owner", "writer", "reader", "freeBusyReader"
}

// FreeBusyInfo represents availability information for a single calendar.
// Busy holds the reported busy spans; Errors holds per-calendar failure
// reasons from the FreeBusy API (calendar not found, access denied, ...).
type FreeBusyInfo struct {
	Calendar string
	Busy     []interval.Span
	Errors   []string
}

// Known returns true if the calendar's availability was resolved without errors.
func (f FreeBusyInfo) Known() bool {
	return len(f.Errors) == 0
}

// toCalendarInfo converts a Google Calendar list entry to a CalendarInfo
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}
