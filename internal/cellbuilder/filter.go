package cellbuilder

import (
	"battlab/internal/cycler"
)

// StepFilter maps each step type to the schedule step indices retained
// during parsing. A step index absent from every list is dropped.
type StepFilter map[cycler.StepType][]int

// Validate rejects filters keyed by an unknown step type.
func (f StepFilter) Validate() error {
	for typ := range f {
		if _, err := cycler.ParseStepType(string(typ)); err != nil {
			return err
		}
	}
	return nil
}

// Retained reports whether rows of the given schedule step are kept.
func (f StepFilter) Retained(stepIndex int) bool {
	_, ok := f.TypeOf(stepIndex)
	return ok
}

// TypeOf returns the classification of a schedule step.
func (f StepFilter) TypeOf(stepIndex int) (cycler.StepType, bool) {
	for typ, indices := range f {
		for _, idx := range indices {
			if idx == stepIndex {
				return typ, true
			}
		}
	}
	return "", false
}
