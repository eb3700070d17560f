// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the codebase, helper
// constructors for common attributes, and PII-safe rendering of participant
// identifiers (hashed, never logged raw).
package logging
