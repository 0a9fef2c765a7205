package cellbuilder

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"battlab/internal/cycler"
	"battlab/internal/eis"
	"battlab/internal/errors"
)

// csvHeader is a raw Arbin header line. The Aux temperature column carries
// a bare 0xB0 degree-symbol byte, which is not valid UTF-8 — exactly what
// the instrument emits.
const csvHeader = "Date_Time,Test_Time(s),Step_Time(s),Step_Index,Cycle_Index," +
	"Voltage(V),Current(A),Charge_Capacity(Ah),Discharge_Capacity(Ah)," +
	"Charge_Energy(Wh),Discharge_Energy(Wh),ACR(Ohm)," +
	"Internal Resistance(Ohm),dV/dt(V/s),Aux_Temperature(\xb0C)_1"

var wantHeaders = []string{
	"Date_Time", "Test_Time(s)", "Step_Time(s)", "Step_Index", "Cycle_Index",
	"Voltage(V)", "Current(A)", "Charge_Capacity(Ah)", "Discharge_Capacity(Ah)",
	"Charge_Energy(Wh)", "Discharge_Energy(Wh)", "ACR(Ohm)",
	"Internal Resistance(Ohm)", "dV/dt(V/s)", "Battery_Temperature(C)",
}

var testFilter = StepFilter{
	cycler.StepCharacterization: {6, 7, 10},
	cycler.StepDegradation:      {25},
}

func csvRow(step, cycle int, voltage float64) string {
	return fmt.Sprintf(
		"11/05/2021 01:08:17.148,100.5,10.25,%d,%d,%g,1.5,0.2,0.3,0.7,1.1,R,0.0042,-0.001,25.5",
		step, cycle, voltage)
}

func csvFile(rows ...string) string {
	return csvHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func parseCSV(t *testing.T, cell *cycler.Cell, content string) {
	t.Helper()
	require.NoError(t, New(nil).ReadCSVFrom(cell, strings.NewReader(content), testFilter))
}

func TestSchemaPreservation(t *testing.T) {
	cell := cycler.NewCell(1, 1)
	parseCSV(t, cell, csvFile(csvRow(6, 1, 3.6), csvRow(6, 1, 3.59)))

	assert.Equal(t, wantHeaders, cell.Headers())

	records, err := cell.Steps(cycler.All(), cycler.At(6))
	require.NoError(t, err)
	for _, r := range records {
		step := r.(*cycler.Step)
		assert.Equal(t, wantHeaders, step.Headers())
	}
}

func TestValueConversionPolicy(t *testing.T) {
	cell := cycler.NewCell(1, 1)
	parseCSV(t, cell, csvFile(csvRow(6, 1, 3.6)))

	records, err := cell.Steps(cycler.At(1), cycler.At(6))
	require.NoError(t, err)
	step := records[0].(*cycler.Step)

	dates, err := step.Strings("Date_Time")
	require.NoError(t, err)
	assert.Equal(t, []string{"11/05/2021 01:08:17.148"}, dates)

	acr, err := step.Strings("ACR(Ohm)")
	require.NoError(t, err)
	assert.Equal(t, []string{"R"}, acr)

	for _, name := range []string{
		"Test_Time(s)", "Step_Time(s)", "Step_Index", "Cycle_Index",
		"Voltage(V)", "Current(A)", "Charge_Capacity(Ah)",
		"Discharge_Capacity(Ah)", "Charge_Energy(Wh)", "Discharge_Energy(Wh)",
		"Internal Resistance(Ohm)", "dV/dt(V/s)", "Battery_Temperature(C)",
	} {
		_, err := step.Floats(name)
		assert.NoError(t, err, name)
	}

	v, err := step.Floats("Voltage(V)")
	require.NoError(t, err)
	assert.Equal(t, []float64{3.6}, v)
	temp, err := step.Floats("Battery_Temperature(C)")
	require.NoError(t, err)
	assert.Equal(t, []float64{25.5}, temp)
}

func TestStepAndCycleBoundaries(t *testing.T) {
	cell := cycler.NewCell(1, 1)
	parseCSV(t, cell, csvFile(
		csvRow(6, 1, 3.60),
		csvRow(6, 1, 3.59),
		csvRow(7, 1, 3.58),
		csvRow(99, 1, 3.57), // not retained: dropped, resets the cursor
		csvRow(7, 1, 3.56),  // recurrence after a gap: a fresh step
		csvRow(6, 2, 3.55),
	))

	require.Equal(t, 2, cell.Len())

	cycle1, err := cell.CyclesAt(1)
	require.NoError(t, err)
	require.Len(t, cycle1, 1)
	// steps 6, 7, 7 — the second 7 is a separate Step, not a continuation
	assert.Equal(t, 3, cycle1[0].Len())

	sevens, err := cycle1[0].StepsAt(7)
	require.NoError(t, err)
	require.Len(t, sevens, 2)
	assert.Equal(t, 1, sevens[0].(*cycler.Step).Rows())
	assert.Equal(t, 1, sevens[1].(*cycler.Step).Rows())

	// the unretained row left no trace
	_, err = cycle1[0].StepsAt(99)
	assert.True(t, errors.IsNotFound(err))

	cycle2, err := cell.CyclesAt(2)
	require.NoError(t, err)
	assert.Equal(t, 1, cycle2[0].Len())
}

func TestContinuationAcrossFiles(t *testing.T) {
	cell := cycler.NewCell(1, 1)
	parseCSV(t, cell, csvFile(
		csvRow(6, 1, 3.60),
		csvRow(25, 2, 3.40),
		csvRow(25, 2, 3.39),
	))
	// file B picks up mid-step: same cycle index, same step index
	parseCSV(t, cell, csvFile(
		csvRow(25, 2, 3.38),
		csvRow(25, 2, 3.37),
		csvRow(25, 2, 3.36),
		csvRow(6, 3, 3.65),
	))

	// no spurious cycle at the file boundary
	cycles2, err := cell.CyclesAt(2)
	require.NoError(t, err)
	require.Len(t, cycles2, 1)

	// one step holding rows from both files
	steps, err := cycles2[0].StepsAt(25)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, 5, steps[0].(*cycler.Step).Rows())

	cycles3, err := cell.CyclesAt(3)
	require.NoError(t, err)
	assert.Len(t, cycles3, 1)
}

func TestCycleRevisitCreatesDuplicateCycles(t *testing.T) {
	cell := cycler.NewCell(1, 1)
	parseCSV(t, cell, csvFile(
		csvRow(6, 1, 3.60),
		csvRow(6, 2, 3.59),
		csvRow(6, 1, 3.58), // revisit: a new Cycle object, no merge
	))

	require.Equal(t, 3, cell.Len())
	dupes, err := cell.CyclesAt(1)
	require.NoError(t, err)
	assert.Len(t, dupes, 2)
}

func TestMalformedRowsAreFatal(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "wrong column count",
			content: csvHeader + "\n1,2,3\n",
		},
		{
			name: "non-numeric measurement",
			content: csvFile(
				"11/05/2021 01:08:17.148,100.5,10.25,6,1,not-a-volt,1.5,0.2,0.3,0.7,1.1,R,0.0042,-0.001,25.5"),
		},
		{
			name: "non-numeric step index",
			content: csvFile(
				"11/05/2021 01:08:17.148,100.5,10.25,six,1,3.6,1.5,0.2,0.3,0.7,1.1,R,0.0042,-0.001,25.5"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := cycler.NewCell(1, 1)
			err := New(nil).ReadCSVFrom(cell, strings.NewReader(tt.content), testFilter)
			require.Error(t, err)
			assert.True(t, errors.IsParse(err))
		})
	}
}

func TestUnreadableFileIsFatal(t *testing.T) {
	cell := cycler.NewCell(1, 1)
	err := New(nil).ReadCSV(cell, filepath.Join(t.TempDir(), "missing.csv"), testFilter)
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestFilterValidation(t *testing.T) {
	cell := cycler.NewCell(1, 1)
	bad := StepFilter{cycler.StepType("conditioning"): {1}}
	err := New(nil).ReadCSVFrom(cell, strings.NewReader(csvFile(csvRow(6, 1, 3.6))), bad)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestStepTypeClassification(t *testing.T) {
	cell := cycler.NewCell(1, 1)
	parseCSV(t, cell, csvFile(csvRow(6, 1, 3.6), csvRow(25, 1, 3.4)))

	records, err := cell.Steps(cycler.At(1), cycler.At(6))
	require.NoError(t, err)
	assert.Equal(t, cycler.StepCharacterization, records[0].(*cycler.Step).Type)

	records, err = cell.Steps(cycler.At(1), cycler.At(25))
	require.NoError(t, err)
	assert.Equal(t, cycler.StepDegradation, records[0].(*cycler.Step).Type)
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Global_Info"))
	_, err := f.NewSheet("Channel_7")
	require.NoError(t, err)

	headerRow := make([]interface{}, len(wantHeaders))
	for i, h := range wantHeaders {
		headerRow[i] = h
	}
	// spreadsheets carry the degree symbol as proper text
	headerRow[len(headerRow)-1] = "Aux_Temperature(°C)_1"
	require.NoError(t, f.SetSheetRow("Channel_7", "A1", &headerRow))

	dataRows := [][]interface{}{
		{"11/05/2021 01:08:17.148", 100.5, 10.25, 6, 1, 3.6, 1.5, 0.2, 0.3, 0.7, 1.1, "R", 0.0042, -0.001, 25.5},
		{"11/05/2021 01:08:18.148", 101.5, 11.25, 6, 1, 3.59, 1.5, 0.2, 0.3, 0.7, 1.1, "R", 0.0042, -0.001, 25.5},
		{"11/05/2021 01:10:18.148", 130.5, 1.25, 7, 1, 3.55, 1.5, 0.2, 0.3, 0.7, 1.1, "R", 0.0042, -0.001, 25.6},
	}
	for i, row := range dataRows {
		r := row
		require.NoError(t, f.SetSheetRow("Channel_7", fmt.Sprintf("A%d", i+2), &r))
	}

	path := filepath.Join(t.TempDir(), "init_gen1_pack1.xlsx")
	require.NoError(t, f.SaveAs(path))

	cells, err := New(nil).ReadWorkbook(path, testFilter)
	require.NoError(t, err)
	require.Len(t, cells, 1)

	cell := cells[0]
	assert.Equal(t, 7, cell.CellNumber)
	assert.Equal(t, 7, cell.ChannelNumber)
	assert.Equal(t, wantHeaders, cell.Headers())
	require.Equal(t, 1, cell.Len())

	sixes, err := cell.Cycles()[0].StepsAt(6)
	require.NoError(t, err)
	require.Len(t, sixes, 1)
	assert.Equal(t, 2, sixes[0].(*cycler.Step).Rows())
}

func TestMergeEIS(t *testing.T) {
	// cycler side: cells 3 and 4, each with cycles 4 and 5
	cellA := cycler.NewCell(3, 3)
	cellA.AppendCycle(cycler.NewCycle(4))
	cellA.AppendCycle(cycler.NewCycle(5))
	cellB := cycler.NewCell(4, 4)
	cellB.AppendCycle(cycler.NewCycle(5))

	// sweep side: cell 3 has a sweep in cycle 5 only
	sweep, err := eis.NewSweep("eis cycle5", 0.5, 14)
	require.NoError(t, err)
	eisCell := eis.NewCell(3, 3, "")
	eisCell.Append(eis.NewCycle(5, "", sweep))

	New(nil).MergeEIS([]*eis.Cell{eisCell}, []*cycler.Cell{cellA, cellB})

	// matched cycle gained the sweep
	got, err := cellA.CyclesAt(5)
	require.NoError(t, err)
	require.Equal(t, 1, got[0].Len())
	assert.Same(t, sweep, got[0].Records()[0])

	// unmatched cycle and unmatched cell are untouched
	got, err = cellA.CyclesAt(4)
	require.NoError(t, err)
	assert.Zero(t, got[0].Len())
	got, err = cellB.CyclesAt(5)
	require.NoError(t, err)
	assert.Zero(t, got[0].Len())
}
