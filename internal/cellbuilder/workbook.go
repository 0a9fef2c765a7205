package cellbuilder

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"battlab/internal/cycler"
	"battlab/internal/errors"
)

// ReadWorkbook parses a multi-sheet cycler workbook. The first sheet holds
// test metadata and is skipped; every following sheet carries one channel's
// data, with the channel number encoded as the second underscore-delimited
// token of the sheet name (for example "Channel_7" → 7). One cell is built
// per data sheet, numbered by its channel.
func (b *Builder) ReadWorkbook(path string, filter StepFilter) ([]*cycler.Cell, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Parse(err, "cannot open workbook %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) < 2 {
		return nil, errors.Parse(nil, "workbook %s has no data sheets", path)
	}

	var cells []*cycler.Cell
	for _, sheet := range sheets[1:] {
		channel, err := channelFromSheetName(sheet)
		if err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.Parse(err, "cannot read sheet %q", sheet)
		}
		if len(rows) == 0 {
			return nil, errors.Parse(nil, "sheet %q is empty", sheet)
		}

		cell := cycler.NewCell(channel, channel)
		b.setHeaders(cell, rows[0])
		state := ParserState{StepIndex: noStep}
		for _, row := range rows[1:] {
			state, err = b.consumeRow(cell, state, padRow(row, len(cell.Headers())), filter)
			if err != nil {
				return nil, err
			}
		}
		cells = append(cells, cell)

		b.logger.Debug("workbook sheet parsed",
			slog.String("sheet", sheet),
			slog.Int("channel", channel),
			slog.Int("cycles", cell.Len()))
	}
	return cells, nil
}

func channelFromSheetName(name string) (int, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return 0, errors.Parse(nil, "sheet name %q does not encode a channel number", name)
	}
	channel, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.Parse(err, "sheet name %q does not encode a channel number", name)
	}
	return channel, nil
}

// padRow restores trailing empty cells a spreadsheet reader trims away.
// Rows longer than the header are left as-is for consumeRow to reject.
func padRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
