package cycler

import (
	"fmt"

	"battlab/internal/errors"
)

// Cell is one physical battery under test, identified by a cell number and
// the cycler channel it was wired to. It owns an ordered, append-only
// sequence of cycles with increasing but not necessarily contiguous cycle
// indices, plus the shared header schema used to interpret its steps'
// column mappings.
type Cell struct {
	CellNumber    int
	ChannelNumber int

	headers []string
	cycles  []*Cycle
}

// NewCell creates an empty cell.
func NewCell(cellNumber, channelNumber int) *Cell {
	return &Cell{CellNumber: cellNumber, ChannelNumber: channelNumber}
}

// String implements fmt.Stringer.
func (c *Cell) String() string {
	return fmt.Sprintf("Cell cell #: %d, channel #: %d", c.CellNumber, c.ChannelNumber)
}

// Headers returns the column names shared by the cell's steps.
func (c *Cell) Headers() []string { return c.headers }

// SetHeaders replaces the cell's header schema. Files of one cell are
// assumed schema-consistent; a later file's header row overwrites.
func (c *Cell) SetHeaders(headers []string) { c.headers = headers }

// AppendCycle adds a cycle in encounter order.
func (c *Cell) AppendCycle(cy *Cycle) { c.cycles = append(c.cycles, cy) }

// Cycles returns the cycles in encounter order.
func (c *Cell) Cycles() []*Cycle { return c.cycles }

// Len reports the number of cycles in the cell.
func (c *Cell) Len() int { return len(c.cycles) }

// LastCycle returns the most recently appended cycle, or nil when empty.
func (c *Cell) LastCycle() *Cycle {
	if len(c.cycles) == 0 {
		return nil
	}
	return c.cycles[len(c.cycles)-1]
}

// CyclesAt returns every cycle whose index equals cycleIndex. Duplicate
// cycle objects with the same index can exist when a test revisits a cycle
// number across file boundaries; all of them are returned.
func (c *Cell) CyclesAt(cycleIndex int) ([]*Cycle, error) {
	out := c.cyclesMatching(cycleIndex)
	if len(out) == 0 {
		return nil, errors.NotFound("cell %d has no cycle with index %d", c.CellNumber, cycleIndex)
	}
	return out, nil
}

// SelectCycles resolves a selector against the cell's cycle indices.
func (c *Cell) SelectCycles(sel Selector) ([]*Cycle, error) {
	out, ok, err := resolveSelector(sel, c.largestCycleIndex(), c.cyclesMatching)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound("cell %d has no cycles within the selection", c.CellNumber)
	}
	return out, nil
}

// Steps is the two-axis compound lookup: cycleSel picks cycles, stepSel
// picks step records within each, and the results are flattened. A cycle
// with no matching steps is skipped; the lookup fails only when no cycle
// anywhere produced a match.
func (c *Cell) Steps(cycleSel, stepSel Selector) ([]Record, error) {
	cycles, _, err := resolveSelector(cycleSel, c.largestCycleIndex(), c.cyclesMatching)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, cy := range cycles {
		records, err := cy.Steps(stepSel)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, records...)
	}
	if len(out) == 0 {
		return nil, errors.NotFound("cell %d has no steps within the selection", c.CellNumber)
	}
	return out, nil
}

func (c *Cell) cyclesMatching(cycleIndex int) []*Cycle {
	var out []*Cycle
	for _, cy := range c.cycles {
		if cy.CycleIndex == cycleIndex {
			out = append(out, cy)
		}
	}
	return out
}

func (c *Cell) largestCycleIndex() int {
	max := 0
	for _, cy := range c.cycles {
		if cy.CycleIndex > max {
			max = cy.CycleIndex
		}
	}
	return max
}
