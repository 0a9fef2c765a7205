package analysis

import (
	"log/slog"
	"math"

	"battlab/internal/cycler"
	"battlab/internal/eis"
	"battlab/internal/errors"
)

// Column names of the measurement series the assignment passes read.
const (
	dischargeCapacityColumn = "Discharge_Capacity(Ah)"
	dischargeEnergyColumn   = "Discharge_Energy(Wh)"
	batteryTempColumn       = "Battery_Temperature(C)"
)

// missingReference marks a cycle whose reference step was never recorded.
// Kept distinguishable from any real state of health, which is positive.
const missingReference = -1.0

// Analyzer runs annotation passes over a parsed batch.
type Analyzer struct {
	logger *slog.Logger
}

// New creates an analyzer. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// AssignSOH stamps every record at stepIndex with its cycle's state of
// health: the final discharge capacity of the cycle's sohStep divided by
// the nominal capacity in Ah. Cycles without a sohStep get -1; cycles
// without a record at stepIndex are skipped.
func (a *Analyzer) AssignSOH(batch *cycler.Batch, stepIndex, sohStep int, nominalCapacity float64) {
	a.assignRatio(batch, stepIndex, sohStep, dischargeCapacityColumn, nominalCapacity,
		func(ann *cycler.Annotations, v float64) { ann.SOH = &v })
}

// AssignSOE stamps every record at stepIndex with its cycle's state of
// energy: the final discharge energy of the cycle's soeStep divided by the
// nominal energy capacity in Wh. Fallback behavior matches AssignSOH.
func (a *Analyzer) AssignSOE(batch *cycler.Batch, stepIndex, soeStep int, nominalEnergy float64) {
	a.assignRatio(batch, stepIndex, soeStep, dischargeEnergyColumn, nominalEnergy,
		func(ann *cycler.Annotations, v float64) { ann.SOE = &v })
}

func (a *Analyzer) assignRatio(batch *cycler.Batch, stepIndex, refStep int, column string, nominal float64, set func(*cycler.Annotations, float64)) {
	for _, cell := range batch.Cells() {
		for _, cycle := range cell.Cycles() {
			ratio := missingReference
			if refs := stepsAt(cycle, refStep); len(refs) > 0 {
				if v, ok := lastFloat(refs[0], column); ok {
					ratio = v / nominal
				}
			}
			for _, ann := range annotationsAt(cycle, stepIndex) {
				set(ann, ratio)
			}
		}
	}
}

// AssignTemperature copies the trailing battery temperature of each cycle's
// tempStep onto every record at eisStep. A cycle without a temperature step
// leaves the annotation unset. When a cycle holds several temperature steps
// the last one wins, with a warning.
func (a *Analyzer) AssignTemperature(batch *cycler.Batch, eisStep, tempStep int) {
	for _, cell := range batch.Cells() {
		for _, cycle := range cell.Cycles() {
			refs := stepsAt(cycle, tempStep)
			if len(refs) > 1 {
				a.logger.Warn("multiple temperature steps in cycle, using the last",
					slog.Int("cell_number", cell.CellNumber),
					slog.Int("cycle_index", cycle.CycleIndex),
					slog.Int("step_index", tempStep),
					slog.Int("count", len(refs)))
			}
			var temperature *float64
			if len(refs) > 0 {
				if v, ok := lastFloat(refs[len(refs)-1], batteryTempColumn); ok {
					temperature = &v
				}
			}
			for _, ann := range annotationsAt(cycle, eisStep) {
				if temperature == nil {
					ann.Temperature = nil
					continue
				}
				t := *temperature
				ann.Temperature = &t
			}
		}
	}
}

// AssignCellNumbers stamps cell and channel identity onto records, for ease
// of access once steps are pulled out of their containing cell. A stepIndex
// of 0 stamps every record; otherwise only records at that step index.
func (a *Analyzer) AssignCellNumbers(batch *cycler.Batch, stepIndex int) {
	for _, cell := range batch.Cells() {
		for _, cycle := range cell.Cycles() {
			var anns []*cycler.Annotations
			if stepIndex == 0 {
				for _, rec := range cycle.Records() {
					if ann := annotationsOf(rec); ann != nil {
						anns = append(anns, ann)
					}
				}
			} else {
				anns = annotationsAt(cycle, stepIndex)
			}
			for _, ann := range anns {
				cn, ch := cell.CellNumber, cell.ChannelNumber
				ann.CellNumber = &cn
				ann.ChannelNumber = &ch
			}
		}
	}
}

// FilterBySOH bins steps by their state-of-health annotation. Bins are
// binWidth percentage points wide, covering [lower, upper); each key is a
// bin's lower bound as a fraction (77 becomes 0.77). Bounds are strict, so
// a step sitting exactly on a bin edge lands in neither neighbor. Steps
// without an SOH annotation are dropped.
func FilterBySOH(steps []*cycler.Step, binWidth, lower, upper int) (map[float64][]*cycler.Step, error) {
	if binWidth < 1 {
		return nil, errors.InvalidArgument("bin width %d must be at least 1", binWidth)
	}

	binned := make(map[float64][]*cycler.Step)
	for l := lower; l < upper; l += binWidth {
		lo := float64(l) / 100
		hi := float64(l+binWidth) / 100
		bucket := []*cycler.Step{}
		for _, step := range steps {
			soh := step.Annotations.SOH
			if soh != nil && lo < *soh && *soh < hi {
				bucket = append(bucket, step)
			}
		}
		binned[lo] = bucket
	}
	return binned, nil
}

// FilterByTemperature collects, per channel, the first step of each cycle
// at stepIndex whose rounded temperature annotation falls strictly between
// lower and upper. Cycles without the step or without a temperature
// annotation are skipped. Every channel of the batch appears as a key even
// when nothing matched.
func FilterByTemperature(batch *cycler.Batch, stepIndex, lower, upper int) map[int][]*cycler.Step {
	filtered := make(map[int][]*cycler.Step)
	for _, cell := range batch.Cells() {
		if _, ok := filtered[cell.ChannelNumber]; !ok {
			filtered[cell.ChannelNumber] = []*cycler.Step{}
		}
		for _, cycle := range cell.Cycles() {
			steps := stepsAt(cycle, stepIndex)
			if len(steps) == 0 || steps[0].Annotations.Temperature == nil {
				continue
			}
			rounded := int(math.Round(*steps[0].Annotations.Temperature))
			if rounded > lower && rounded < upper {
				filtered[cell.ChannelNumber] = append(filtered[cell.ChannelNumber], steps[0])
			}
		}
	}
	return filtered
}

// stepsAt returns the cycler steps of cycle at stepIndex, ignoring sweeps
// and treating "no match" as an empty result.
func stepsAt(cycle *cycler.Cycle, stepIndex int) []*cycler.Step {
	records, err := cycle.StepsAt(stepIndex)
	if err != nil {
		return nil
	}
	return cycler.OnlySteps(records)
}

// annotationsAt returns mutable annotations for every record of cycle at
// stepIndex, sweeps included.
func annotationsAt(cycle *cycler.Cycle, stepIndex int) []*cycler.Annotations {
	records, err := cycle.StepsAt(stepIndex)
	if err != nil {
		return nil
	}
	anns := make([]*cycler.Annotations, 0, len(records))
	for _, rec := range records {
		if ann := annotationsOf(rec); ann != nil {
			anns = append(anns, ann)
		}
	}
	return anns
}

func annotationsOf(rec cycler.Record) *cycler.Annotations {
	switch r := rec.(type) {
	case *cycler.Step:
		return &r.Annotations
	case *eis.Sweep:
		return &r.Annotations
	}
	return nil
}

// lastFloat returns the final value of a step's numeric column.
func lastFloat(step *cycler.Step, column string) (float64, bool) {
	values, err := step.Floats(column)
	if err != nil || len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}
