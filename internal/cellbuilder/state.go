package cellbuilder

import (
	"battlab/internal/cycler"
)

// noStep is the sentinel step index meaning "no current step". Schedule
// step indices start at 1, so 0 is free. The running state resets to it
// when a row of an unretained step arrives, so a later recurrence of a
// retained step in the same cycle opens a fresh Step instead of continuing
// the previous one.
const noStep = 0

// ParserState is the explicit row-processing cursor: the cycle and step a
// row stream is currently inside of. It is passed into and returned from
// each row-processing call rather than kept as builder fields, so one
// builder can parse several cells without leaking position between them.
type ParserState struct {
	CycleIndex int
	StepIndex  int
	StepType   cycler.StepType
}

// seedState derives the starting cursor for a file from what the target
// cell already holds, so a cycle or step spread over multiple files
// continues the trailing Cycle and Step instead of opening new ones.
func seedState(cell *cycler.Cell) ParserState {
	state := ParserState{StepIndex: noStep}
	last := cell.LastCycle()
	if last == nil {
		return state
	}
	state.CycleIndex = last.CycleIndex
	if step := last.LastStep(); step != nil {
		state.StepIndex = step.StepIndex
		state.StepType = step.Type
	}
	return state
}
