// Package cycler holds the in-memory hierarchy for battery cycler test data.
//
// The hierarchy mirrors how a multi-channel test campaign is organised:
//
//	Batch → Cell → Cycle → Step (or impedance Sweep, after merging)
//
// A Step is one contiguous schedule phase (for example a constant-current
// discharge) holding column-oriented time-series data. A Cycle groups the
// steps that share a cycle number, a Cell groups the cycles of one physical
// battery on one channel, and a Batch groups the cells of a campaign.
//
// # Lookup semantics
//
// Test schedules are sparse and irregular: not every cycle runs every step,
// and cycles can be missing entirely when a test is split across files.
// Containers therefore resolve lookups permissively:
//
//   - An exact lookup (At selector) returns every child whose identity
//     matches, and fails with a not-found error when none do.
//   - A range lookup walks the numeric range and silently skips values with
//     no match; it fails only when the entire range comes up empty.
//   - Compound lookups (cycle × step, or cell × cycle × step) resolve each
//     axis independently and flatten the results; an empty branch is skipped
//     unless no branch anywhere produced a match.
//
// Containers are built once by the cellbuilder package and then only read,
// except for the additive EIS merge and the scalar annotations that the
// analysis package attaches to leaf records.
package cycler
