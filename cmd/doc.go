// Package cmd implements the command-line interface for meetwhen.
//
// This package provides the following commands:
//   - find: Compute common free windows for a set of participant calendars
//   - score: Score candidate recurring meeting slots against calendars
//   - auth: Authorize a Google account for calendar access
//   - serve: Start the MCP server to provide scheduling tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
