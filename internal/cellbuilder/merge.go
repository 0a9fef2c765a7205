package cellbuilder

import (
	"log/slog"

	"battlab/internal/cycler"
	"battlab/internal/eis"
)

// MergeEIS splices impedance sweeps into the matching cycler cells. A
// sweep-side cell matches a cycler cell on CellNumber (the upstream EIS
// loader stores channel identity in that field), and a sweep-side cycle
// matches a cycler cycle on equal cycle index. Every sweep of a matched
// cycle is appended to the cycler cycle's record sequence, where it sits
// next to the cycler steps. Cycler cycles with no sweep counterpart are
// left untouched; that is expected, not an error.
func (b *Builder) MergeEIS(eisCells []*eis.Cell, cells []*cycler.Cell) {
	byCellNumber := make(map[int]*eis.Cell, len(eisCells))
	for _, ec := range eisCells {
		byCellNumber[ec.CellNumber] = ec
	}

	for _, cell := range cells {
		ec, ok := byCellNumber[cell.CellNumber]
		if !ok {
			continue
		}
		merged := 0
		for _, cycle := range cell.Cycles() {
			for _, eisCycle := range ec.Cycles() {
				if eisCycle.CycleIndex != cycle.CycleIndex {
					continue
				}
				for _, sweep := range eisCycle.Sweeps() {
					cycle.Append(sweep)
					merged++
				}
			}
		}
		b.logger.Debug("impedance sweeps merged",
			slog.Int("cell_number", cell.CellNumber),
			slog.Int("sweeps", merged))
	}
}
