package cycler

import (
	"fmt"

	"battlab/internal/errors"
)

// Cycle is one repetition of a test schedule applied to a cell. It owns an
// ordered, append-only sequence of records (steps, plus impedance sweeps
// after an EIS merge). The same step index may occur more than once within
// a cycle: the schedule step recurs as the cell ages, or a step is split
// across source files. Lookups therefore return every match, never one.
type Cycle struct {
	CycleIndex int
	Name       string
	// TestNumber is the campaign test the cycle belongs to; zero when unknown.
	TestNumber int

	records []Record
}

// NewCycle creates an empty cycle.
func NewCycle(cycleIndex int) *Cycle {
	return &Cycle{CycleIndex: cycleIndex}
}

// String implements fmt.Stringer.
func (c *Cycle) String() string {
	return fmt.Sprintf("Cycle name: %s, cycle_index: %d, test number: %d", c.Name, c.CycleIndex, c.TestNumber)
}

// Append adds a record in encounter order.
func (c *Cycle) Append(r Record) {
	c.records = append(c.records, r)
}

// Records returns the records in encounter order.
func (c *Cycle) Records() []Record { return c.records }

// Len reports the number of records in the cycle.
func (c *Cycle) Len() int { return len(c.records) }

// StepsAt returns every record whose step index equals stepIndex.
func (c *Cycle) StepsAt(stepIndex int) ([]Record, error) {
	out := c.stepsMatching(stepIndex)
	if len(out) == 0 {
		return nil, errors.NotFound("cycle %d has no step with index %d", c.CycleIndex, stepIndex)
	}
	return out, nil
}

// Steps resolves a selector against the cycle's step indices. Range
// selectors skip missing step indices and fail only when the whole range
// yields nothing.
func (c *Cycle) Steps(sel Selector) ([]Record, error) {
	out, ok, err := resolveSelector(sel, c.largestStepIndex(), c.stepsMatching)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound("cycle %d has no steps within the selection", c.CycleIndex)
	}
	return out, nil
}

func (c *Cycle) stepsMatching(stepIndex int) []Record {
	var out []Record
	for _, r := range c.records {
		if r.RecordStepIndex() == stepIndex {
			out = append(out, r)
		}
	}
	return out
}

func (c *Cycle) largestStepIndex() int {
	max := 0
	for _, r := range c.records {
		if r.RecordStepIndex() > max {
			max = r.RecordStepIndex()
		}
	}
	return max
}

// LastStep returns the most recently appended cycler step, skipping merged
// sweeps. Nil when the cycle holds no steps.
func (c *Cycle) LastStep() *Step {
	for i := len(c.records) - 1; i >= 0; i-- {
		if s, ok := c.records[i].(*Step); ok {
			return s
		}
	}
	return nil
}
