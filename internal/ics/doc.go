// Package ics imports busy calendars from iCalendar (.ics) files.
//
// Each VEVENT with a concrete DTSTART/DTEND becomes a busy span for the
// availability pipeline. All-day events and malformed VEVENTs are skipped
// with a logged warning; free/busy semantics for date-only ranges are out
// of scope.
package ics
