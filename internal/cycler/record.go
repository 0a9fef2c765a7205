package cycler

import (
	"battlab/internal/errors"
)

// StepType classifies a schedule step within a test campaign.
type StepType string

const (
	StepInitialization   StepType = "initialization"
	StepCharacterization StepType = "characterization"
	StepDegradation      StepType = "degradation"
)

// ParseStepType converts a configuration string into a StepType.
func ParseStepType(s string) (StepType, error) {
	switch StepType(s) {
	case StepInitialization, StepCharacterization, StepDegradation:
		return StepType(s), nil
	}
	return "", errors.InvalidArgument(
		"step type must be one of %q, %q, %q; got %q",
		StepInitialization, StepCharacterization, StepDegradation, s)
}

// Record is one entry in a Cycle: either a cycler *Step or an impedance
// sweep merged in from the eis package. The two shapes coexist in the same
// ordered sequence and are told apart by type assertion.
type Record interface {
	// RecordStepIndex reports the schedule step index the record belongs to.
	RecordStepIndex() int
}

// OnlySteps filters records down to cycler steps, preserving order.
func OnlySteps(records []Record) []*Step {
	var steps []*Step
	for _, r := range records {
		if s, ok := r.(*Step); ok {
			steps = append(steps, s)
		}
	}
	return steps
}

// Annotations are optional scalar fields attached to leaf records by
// post-processing collaborators. They are not part of the parsed schema;
// a nil field means the annotation was never assigned.
type Annotations struct {
	// SOH is the state of health: full-discharge capacity over nominal.
	SOH *float64
	// SOE is the state of energy: full-discharge energy over nominal.
	SOE *float64
	// Temperature is the battery temperature in Celsius at measurement time.
	Temperature *float64
	// CellNumber and ChannelNumber stamp the owning cell's identity onto
	// the record for flat, container-free processing.
	CellNumber    *int
	ChannelNumber *int
}
