// Package analysis post-processes a parsed batch: deriving per-cycle
// state-of-health and state-of-energy from a reference full-discharge step,
// copying reference-step temperatures onto impedance sweeps, stamping cell
// identity onto records, and binning steps by health or temperature.
//
// All assignment passes are permissive in the same way the lookup API is:
// a cycle missing the reference step gets the documented fallback, and a
// cycle missing the target step is skipped without error.
package analysis
