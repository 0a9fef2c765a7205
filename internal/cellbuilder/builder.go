package cellbuilder

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"battlab/internal/cycler"
	"battlab/internal/errors"
	"battlab/internal/files"
)

// Row positions of the boundary-detection columns in a cycler export.
const (
	stepIndexColumn  = 3
	cycleIndexColumn = 4
)

// stringColumns lists the headers whose values stay in their textual form.
// Date_Time is a timestamp; ACR(Ohm) is emitted non-numerically by the
// instrument. Every other column converts to float64.
var stringColumns = map[string]bool{
	"Date_Time": true,
	"ACR(Ohm)":  true,
}

// Builder turns raw cycler rows into the Cycle/Step structure of a target
// cell. A builder carries no position between calls; it is safe to reuse
// for any number of cells as long as calls stay sequential.
type Builder struct {
	logger *slog.Logger
}

// New creates a builder. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// ReadCSV parses one comma-delimited cycler export into cell, keeping only
// the rows whose step index the filter retains. The first line is the
// header row. Calling ReadCSV again with the chronological continuation of
// an earlier file resumes the trailing cycle and step.
func (b *Builder) ReadCSV(cell *cycler.Cell, path string, filter StepFilter) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Parse(err, "cannot open cycler file %s", path)
	}
	defer f.Close()
	if err := b.ReadCSVFrom(cell, f, filter); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// ReadCSVFrom parses CSV content from r into cell. Arbin temperature
// headers carry a raw degree-symbol byte that is not valid UTF-8, so the
// stream is decoded permissively as Latin-1 rather than strictly.
func (b *Builder) ReadCSVFrom(cell *cycler.Cell, r io.Reader, filter StepFilter) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	state := seedState(cell)
	rows := 0

	scanner := bufio.NewScanner(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			b.setHeaders(cell, strings.Split(line, ","))
			first = false
			continue
		}
		next, err := b.consumeRow(cell, state, strings.Split(line, ","), filter)
		if err != nil {
			return err
		}
		state = next
		rows++
	}
	if err := scanner.Err(); err != nil {
		return errors.Parse(err, "cannot read cycler content")
	}

	b.logger.Debug("cycler file parsed",
		slog.Int("rows", rows),
		slog.Int("cell_number", cell.CellNumber),
		slog.Int("cycles", cell.Len()))
	return nil
}

// LoadDirectory parses every CSV file in dir into cell, in chronological
// sequence order, continuing cycles and steps across file boundaries.
func (b *Builder) LoadDirectory(cell *cycler.Cell, dir string, filter StepFilter) error {
	found, err := files.NewDiscovery("").FindCSVFiles(dir)
	if err != nil {
		return errors.Parse(err, "cannot list cycler directory %s", dir)
	}
	for _, f := range found {
		if err := b.ReadCSV(cell, f.Path, filter); err != nil {
			return err
		}
	}
	b.logger.Info("cycler directory loaded",
		slog.String("dir", dir),
		slog.Int("files", len(found)),
		slog.Int("cell_number", cell.CellNumber),
		slog.Int("cycles", cell.Len()))
	return nil
}

// setHeaders normalizes and installs a file's header row. Files of one
// cell are assumed schema-consistent, so a later file's headers overwrite;
// a mismatch is logged because it would silently reinterpret columns
// parsed earlier.
func (b *Builder) setHeaders(cell *cycler.Cell, raw []string) {
	headers := normalizeHeaders(raw)
	if prev := cell.Headers(); len(prev) > 0 && !equalHeaders(prev, headers) {
		b.logger.Warn("continuation file headers differ from previous files",
			slog.Int("cell_number", cell.CellNumber),
			slog.Any("previous", prev),
			slog.Any("current", headers))
	}
	cell.SetHeaders(headers)
}

// normalizeHeaders renames the positional Aux temperature columns to their
// semantic names. The raw headers embed a degree symbol whose byte encoding
// differs between the programs that exported the file, so the whole header
// is replaced rather than cleaned.
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		switch {
		case strings.HasPrefix(h, "Aux") && strings.HasSuffix(h, "_1"):
			headers[i] = "Battery_Temperature(C)"
		case strings.HasPrefix(h, "Aux") && strings.HasSuffix(h, "_2"):
			headers[i] = "Chamber_Temperature(C)"
		default:
			headers[i] = h
		}
	}
	return headers
}

func equalHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// consumeRow advances the hierarchy by one data row and returns the moved
// cursor. Cycle boundaries are detected by any change of the cycle index
// column — including a revisit of an earlier value, which deliberately
// opens a duplicate Cycle object rather than merging into the old one.
func (b *Builder) consumeRow(cell *cycler.Cell, state ParserState, row []string, filter StepFilter) (ParserState, error) {
	headers := cell.Headers()
	if len(row) != len(headers) {
		return state, errors.Parse(nil, "row has %d columns, header has %d", len(row), len(headers))
	}

	stepIndex, err := parseIndex(row[stepIndexColumn])
	if err != nil {
		return state, errors.Parse(err, "step index %q is not an integer", row[stepIndexColumn])
	}
	cycleIndex, err := parseIndex(row[cycleIndexColumn])
	if err != nil {
		return state, errors.Parse(err, "cycle index %q is not an integer", row[cycleIndexColumn])
	}

	if cycleIndex != state.CycleIndex {
		state.CycleIndex = cycleIndex
		state.StepIndex = noStep
		cell.AppendCycle(cycler.NewCycle(cycleIndex))
		b.logger.Debug("processing test cycle", slog.Int("cycle_index", cycleIndex))
	}

	stepType, retained := filter.TypeOf(stepIndex)
	switch {
	case retained && stepIndex != state.StepIndex:
		state.StepIndex = stepIndex
		state.StepType = stepType
		step, err := cycler.NewStep(stepIndex, stepType)
		if err != nil {
			return state, err
		}
		if err := appendRow(step, headers, row); err != nil {
			return state, err
		}
		b.currentCycle(cell, state).Append(step)

	case retained:
		cycle := b.currentCycle(cell, state)
		step := cycle.LastStep()
		if step == nil {
			// file opened mid-step with no prior rows retained
			step, err = cycler.NewStep(stepIndex, state.StepType)
			if err != nil {
				return state, err
			}
			cycle.Append(step)
		}
		if err := appendRow(step, headers, row); err != nil {
			return state, err
		}

	default:
		state.StepIndex = noStep
	}
	return state, nil
}

// currentCycle returns the cycle rows are currently appended to, creating
// it when a file starts inside a cycle the cell has never seen.
func (b *Builder) currentCycle(cell *cycler.Cell, state ParserState) *cycler.Cycle {
	if last := cell.LastCycle(); last != nil {
		return last
	}
	cycle := cycler.NewCycle(state.CycleIndex)
	cell.AppendCycle(cycle)
	return cycle
}

// appendRow extends every column of step by one value, converting per the
// fixed header table: the known textual columns stay strings, everything
// else parses as float64.
func appendRow(step *cycler.Step, headers []string, row []string) error {
	for i, header := range headers {
		value := strings.TrimSpace(row[i])
		if stringColumns[header] {
			if err := step.AppendString(header, value); err != nil {
				return err
			}
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Parse(err, "column %q value %q is not numeric", header, value)
		}
		if err := step.AppendFloat(header, v); err != nil {
			return err
		}
	}
	return nil
}

// parseIndex reads a boundary column value, tolerating the float rendering
// some exports use for integer columns.
func parseIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
