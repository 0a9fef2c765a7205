package eis

import (
	"fmt"

	"battlab/internal/cycler"
)

// Cycle groups the impedance sweeps taken during one test cycle.
type Cycle struct {
	CycleIndex int
	Name       string

	sweeps []*Sweep
}

// NewCycle creates a cycle over the given sweeps, in chronological order.
func NewCycle(cycleIndex int, name string, sweeps ...*Sweep) *Cycle {
	return &Cycle{CycleIndex: cycleIndex, Name: name, sweeps: sweeps}
}

// String implements fmt.Stringer.
func (c *Cycle) String() string {
	return fmt.Sprintf("EIS cycle name: %s, cycle index: %d", c.Name, c.CycleIndex)
}

// Append adds a sweep in encounter order.
func (c *Cycle) Append(s *Sweep) { c.sweeps = append(c.sweeps, s) }

// Sweeps returns the sweeps in encounter order.
func (c *Cycle) Sweeps() []*Sweep { return c.sweeps }

// Len reports the number of sweeps in the cycle.
func (c *Cycle) Len() int { return len(c.sweeps) }

// DataAsArray returns every sweep in the cycle as a sweeps x points x 11
// table.
func (c *Cycle) DataAsArray() [][][]float64 {
	out := make([][][]float64, len(c.sweeps))
	for i, s := range c.sweeps {
		out[i] = s.DataAsArray()
	}
	return out
}

// Cell groups the impedance cycles measured on one battery. CellNumber
// carries the channel identity assigned by the upstream loader and is the
// join key for merging into cycler cells.
type Cell struct {
	Name          string
	CellNumber    int
	ChannelNumber int

	cycles []*Cycle
}

// NewCell creates an empty EIS cell.
func NewCell(cellNumber, channelNumber int, name string) *Cell {
	return &Cell{CellNumber: cellNumber, ChannelNumber: channelNumber, Name: name}
}

// String implements fmt.Stringer.
func (c *Cell) String() string {
	return fmt.Sprintf("EIS cell name: %s, cell #: %d, channel #: %d", c.Name, c.CellNumber, c.ChannelNumber)
}

// Append adds a cycle in encounter order.
func (c *Cell) Append(cy *Cycle) { c.cycles = append(c.cycles, cy) }

// Cycles returns the cycles in encounter order.
func (c *Cell) Cycles() []*Cycle { return c.cycles }

// Len reports the number of cycles in the cell.
func (c *Cell) Len() int { return len(c.cycles) }

// SweepsOf filters mixed cycle records down to impedance sweeps,
// preserving order.
func SweepsOf(records []cycler.Record) []*Sweep {
	var sweeps []*Sweep
	for _, r := range records {
		if s, ok := r.(*Sweep); ok {
			sweeps = append(sweeps, s)
		}
	}
	return sweeps
}

// SweepsAt returns the impedance sweeps in a cycler cycle that carry the
// given step index. The result is empty, not an error, when the cycle has
// no merged sweeps at that index.
func SweepsAt(c *cycler.Cycle, stepIndex int) []*Sweep {
	var sweeps []*Sweep
	for _, r := range c.Records() {
		if s, ok := r.(*Sweep); ok && s.StepIndex == stepIndex {
			sweeps = append(sweeps, s)
		}
	}
	return sweeps
}
