package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"battlab/internal/cycler"
)

// metadataSheet is the first sheet of an exported workbook. Readers skip
// it, so its layout is informational only.
const metadataSheet = "Global_Info"

// WriteCellWorkbook writes one cell as an Excel workbook: a metadata sheet
// followed by a Channel_<n> sheet holding the header row and every retained
// step row of every cycle, in parse order.
func (e *Exporter) WriteCellWorkbook(cell *cycler.Cell, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), metadataSheet); err != nil {
		return fmt.Errorf("failed to name metadata sheet: %w", err)
	}
	meta := [][]interface{}{
		{"Cell_Number", cell.CellNumber},
		{"Channel_Number", cell.ChannelNumber},
		{"Cycles", cell.Len()},
	}
	for i, row := range meta {
		r := row
		if err := f.SetSheetRow(metadataSheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
	}

	sheet := fmt.Sprintf("Channel_%d", cell.ChannelNumber)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	header := make([]interface{}, len(cell.Headers()))
	for i, h := range cell.Headers() {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	rowNum := 2
	written := 0
	for _, cycle := range cell.Cycles() {
		for _, step := range cycler.OnlySteps(cycle.Records()) {
			values, err := stepValues(step)
			if err != nil {
				return err
			}
			for _, row := range values {
				r := row
				if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &r); err != nil {
					return fmt.Errorf("failed to write data row: %w", err)
				}
				rowNum++
				written++
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	e.logger.Info("cell workbook exported",
		slog.String("path", path),
		slog.Int("cell_number", cell.CellNumber),
		slog.Int("rows", written))
	return nil
}

// stepValues renders a step's columns as typed cell values in header order,
// so spreadsheet numbers stay numbers.
func stepValues(step *cycler.Step) ([][]interface{}, error) {
	headers := step.Headers()
	rows := make([][]interface{}, step.Rows())
	for i := range rows {
		rows[i] = make([]interface{}, len(headers))
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
			rows[i][j] = v
		}
	}
	return rows, nil
}
