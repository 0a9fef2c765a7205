// Package cellbuilder reconstructs the cycler data hierarchy from raw,
// flat, multi-file instrument exports.
//
// The builder consumes rows one at a time and detects cycle and step
// boundaries from the monotonic index columns each row carries. A step
// classification filter decides which schedule steps are retained; rows of
// unretained steps are dropped, not treated as errors. Parsing a file into
// a cell that already holds data continues the trailing cycle and step, so
// a schedule step split across two files becomes one Step, not two.
//
// Impedance sweeps parsed by the eis package are spliced into the cycler
// hierarchy afterwards with MergeEIS, matching on cell number and cycle
// index.
package cellbuilder
