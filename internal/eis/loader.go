package eis

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"battlab/internal/files"
)

// dtaNamePattern extracts channel, cycle and step identity from the export
// naming convention, e.g. B6T10V0_Chan001_Cycle005_Step014.DTA.
var dtaNamePattern = regexp.MustCompile(`Chan(\d+)_Cycle(\d+)_Step(\d+)`)

// Loader reads a directory of DTA exports into per-channel cells.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadDirectory parses every DTA file in dir and groups the sweeps into one
// Cell per channel, one Cycle per (channel, cycle) pair. The channel number
// doubles as the cell number. Files whose names do not carry the
// Chan/Cycle/Step tokens are skipped with a warning; a file that matches
// but fails to parse aborts the load. soc is the state of charge the sweeps
// were recorded at.
func (l *Loader) LoadDirectory(dir string, soc float64) ([]*Cell, error) {
	found, err := files.NewDiscovery("").FindDTAFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list DTA directory %s: %w", dir, err)
	}

	cells := make(map[int]*Cell)
	cycles := make(map[[2]int]*Cycle)
	var order []int

	for _, f := range found {
		m := dtaNamePattern.FindStringSubmatch(f.Name)
		if m == nil {
			l.logger.Warn("skipping DTA file with unrecognized name",
				slog.String("name", f.Name))
			continue
		}
		channel, _ := strconv.Atoi(m[1])
		cycleIndex, _ := strconv.Atoi(m[2])
		stepIndex, _ := strconv.Atoi(m[3])

		sweep, err := NewSweep(fmt.Sprintf("eis cycle%d", cycleIndex), soc, stepIndex)
		if err != nil {
			return nil, err
		}
		if err := sweep.ReadDTA(f.Path); err != nil {
			return nil, err
		}

		cell, ok := cells[channel]
		if !ok {
			cell = NewCell(channel, channel, fmt.Sprintf("eis data for channel %d", channel))
			cells[channel] = cell
			order = append(order, channel)
		}
		key := [2]int{channel, cycleIndex}
		cycle, ok := cycles[key]
		if !ok {
			cycle = NewCycle(cycleIndex, fmt.Sprintf("cycle_object_%d", cycleIndex))
			cycles[key] = cycle
			cell.Append(cycle)
		}
		cycle.Append(sweep)
	}

	result := make([]*Cell, 0, len(order))
	for _, channel := range order {
		cell := cells[channel]
		l.logger.Debug("impedance channel loaded",
			slog.Int("channel", channel),
			slog.Int("cycles", cell.Len()))
		result = append(result, cell)
	}
	return result, nil
}
