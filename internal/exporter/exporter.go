// Package exporter writes parsed containers back out as CSV files and
// Excel workbooks. Workbook output round-trips the parser's layout: one
// metadata sheet followed by one data sheet per channel.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"battlab/internal/cycler"
	"battlab/internal/eis"
)

// Exporter writes container data to disk.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// WriteStepCSV writes one step as a CSV file: a header row in source
// column order, then one row per stored sample.
func (e *Exporter) WriteStepCSV(step *cycler.Step, path string) error {
	rows, err := stepRows(step)
	if err != nil {
		return err
	}
	if err := e.writeCSV(path, step.Headers(), rows); err != nil {
		return err
	}
	e.logger.Info("step exported",
		slog.String("path", path),
		slog.Int("step_index", step.StepIndex),
		slog.Int("rows", len(rows)))
	return nil
}

// WriteSweepCSV writes one impedance sweep as a CSV file using the sweep's
// composite headers, one row per frequency point.
func (e *Exporter) WriteSweepCSV(sweep *eis.Sweep, path string) error {
	data := sweep.DataAsArray()
	rows := make([][]string, len(data))
	for i, point := range data {
		row := make([]string, len(point))
		for j, v := range point {
			row[j] = formatFloat(v)
		}
		rows[i] = row
	}
	if err := e.writeCSV(path, sweep.Headers(), rows); err != nil {
		return err
	}
	e.logger.Info("sweep exported",
		slog.String("path", path),
		slog.String("sweep", sweep.Name),
		slog.Int("points", len(rows)))
	return nil
}

func (e *Exporter) writeCSV(path string, headers []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// stepRows renders a step's columns as text rows in header order.
func stepRows(step *cycler.Step) ([][]string, error) {
	headers := step.Headers()
	rows := make([][]string, step.Rows())
	for i := range rows {
		rows[i] = make([]string, len(headers))
	}
	for j, name := range headers {
		col, err := step.Column(name)
		if err != nil {
			return nil, err
		}
		if col.Kind() == cycler.ColumnString {
			for i, v := range col.Strings() {
				rows[i][j] = v
			}
			continue
		}
		for i, v := range col.Floats() {
			rows[i][j] = formatFloat(v)
		}
	}
	return rows, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
