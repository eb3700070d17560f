// Package recurring evaluates candidate recurring meeting slots (weekly or
// biweekly) against participant calendars. A candidate is a weekly pattern
// anchor (day of week, local clock time, IANA zone); the enumerator expands
// it into concrete zoned occurrences over a sampled date range, and the
// scorer counts per-person conflicts, computes an availability percentage
// and renders a deterministic natural-language trade-off summary.
//
// Occurrence construction goes through zoned-time arithmetic (rrule
// expansion anchored at a DTSTART built in the slot's zone) so daylight
// saving transitions shift the UTC instant while the local wall-clock time
// stays fixed.
package recurring
