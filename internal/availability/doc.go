// Package availability answers "when can this group meet" for one-off
// meetings. It layers manual overrides over provider-sourced busy data,
// composes the interval primitives into the common-free-time pipeline, and
// applies the policy filter that discards windows too short or outside
// acceptable hours.
//
// A participant whose calendar could not be resolved carries StatusUnknown.
// Unknown is a first-class state, never conflated with an empty busy list:
// the pipeline excludes unknown participants from intersection and reports
// them so callers never treat "no data" as "free all day".
package availability
