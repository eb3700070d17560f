// Package scheduling_tools provides MCP (Model Context Protocol) tools for
// availability computation and meeting scheduling.
//
// The tools expose the availability engine through a standardized MCP
// interface: finding common free time across participants, merging manual
// overrides into provider busy data, scoring recurring slot candidates, and
// raw free/busy passthrough against Google Calendar.
//
// Participant calendars can be supplied inline as JSON, or resolved from
// Google Calendar using the multi-account authentication shared with the
// rest of the server.
package scheduling_tools
