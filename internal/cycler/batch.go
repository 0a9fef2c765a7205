package cycler

import (
	"battlab/internal/errors"
)

// Batch is an ordered group of cells tested together under one campaign,
// keyed by cell number. Cell numbers need not be contiguous.
type Batch struct {
	cells []*Cell
}

// NewBatch creates a batch over the given cells.
func NewBatch(cells ...*Cell) *Batch {
	return &Batch{cells: cells}
}

// AppendCell adds a cell in encounter order.
func (b *Batch) AppendCell(c *Cell) { b.cells = append(b.cells, c) }

// Cells returns the cells in encounter order.
func (b *Batch) Cells() []*Cell { return b.cells }

// Len reports the number of cells in the batch.
func (b *Batch) Len() int { return len(b.cells) }

// CellsAt returns every cell whose cell number equals cellNumber.
func (b *Batch) CellsAt(cellNumber int) ([]*Cell, error) {
	out := b.cellsMatching(cellNumber)
	if len(out) == 0 {
		return nil, errors.NotFound("batch has no cell with number %d", cellNumber)
	}
	return out, nil
}

// SelectCells resolves a selector against the batch's cell numbers.
func (b *Batch) SelectCells(sel Selector) ([]*Cell, error) {
	out, ok, err := resolveSelector(sel, b.largestCellNumber(), b.cellsMatching)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound("batch has no cells within the selection")
	}
	return out, nil
}

// Cycles is the two-axis compound lookup over cell and cycle identity.
func (b *Batch) Cycles(cellSel, cycleSel Selector) ([]*Cycle, error) {
	cells, _, err := resolveSelector(cellSel, b.largestCellNumber(), b.cellsMatching)
	if err != nil {
		return nil, err
	}
	var out []*Cycle
	for _, cell := range cells {
		cycles, err := cell.SelectCycles(cycleSel)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, cycles...)
	}
	if len(out) == 0 {
		return nil, errors.NotFound("batch has no cycles within the selection")
	}
	return out, nil
}

// Steps is the three-axis compound lookup over cell, cycle and step
// identity, flattened into one sequence of leaf records.
func (b *Batch) Steps(cellSel, cycleSel, stepSel Selector) ([]Record, error) {
	cells, _, err := resolveSelector(cellSel, b.largestCellNumber(), b.cellsMatching)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, cell := range cells {
		records, err := cell.Steps(cycleSel, stepSel)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, records...)
	}
	if len(out) == 0 {
		return nil, errors.NotFound("batch has no steps within the selection")
	}
	return out, nil
}

func (b *Batch) cellsMatching(cellNumber int) []*Cell {
	var out []*Cell
	for _, c := range b.cells {
		if c.CellNumber == cellNumber {
			out = append(out, c)
		}
	}
	return out
}

func (b *Batch) largestCellNumber() int {
	max := 0
	for _, c := range b.cells {
		if c.CellNumber > max {
			max = c.CellNumber
		}
	}
	return max
}
