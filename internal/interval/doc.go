// Package interval implements the time-interval primitives the availability
// engine is built on: merging raw busy blocks, inverting busy time into free
// time within a bounding window, and intersecting free-time lists across
// participants.
//
// All intervals are half-open [Start, End). Lists are homogeneous: a list
// holds either busy time or free time, never both. Every function in this
// package is pure and safe for concurrent use.
package interval
