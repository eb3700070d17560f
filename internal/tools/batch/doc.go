// Package batch provides common utilities for multi-item MCP tool requests.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Formatting per-item results in a consistent structure
//   - Handling partial failures without aborting the whole request
package batch
