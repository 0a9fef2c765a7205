package cycler

import (
	"fmt"

	"battlab/internal/errors"
)

// Step is one contiguous operating phase of a test schedule, for example a
// constant-current discharge between two states of charge. It holds the raw
// rows of that phase as column-oriented sequences keyed by the header names
// of the source file.
type Step struct {
	StepIndex int
	Type      StepType
	Name      string

	// Annotations are attached after parsing by the analysis package.
	Annotations Annotations

	headers []string
	columns map[string]*Column
}

// NewStep creates an empty step. The step type must be one of the known
// StepType values.
func NewStep(stepIndex int, stepType StepType) (*Step, error) {
	if _, err := ParseStepType(string(stepType)); err != nil {
		return nil, err
	}
	return &Step{
		StepIndex: stepIndex,
		Type:      stepType,
		columns:   make(map[string]*Column),
	}, nil
}

// String implements fmt.Stringer.
func (s *Step) String() string {
	return fmt.Sprintf("Step name: %s, step_index: %d, step_type: %s", s.Name, s.StepIndex, s.Type)
}

// RecordStepIndex implements Record.
func (s *Step) RecordStepIndex() int { return s.StepIndex }

// Headers returns the column names in source order.
func (s *Step) Headers() []string { return s.headers }

// Rows reports the number of rows stored in the step, taken from the first
// column. All columns of a step have equal length.
func (s *Step) Rows() int {
	if len(s.headers) == 0 {
		return 0
	}
	return s.columns[s.headers[0]].Len()
}

// Column returns the column for header name.
func (s *Step) Column(name string) (*Column, error) {
	c, ok := s.columns[name]
	if !ok {
		return nil, errors.NotFound("step %d has no column %q", s.StepIndex, name)
	}
	return c, nil
}

// Floats returns the numeric values of the named column.
func (s *Step) Floats(name string) ([]float64, error) {
	c, err := s.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind() != ColumnFloat {
		return nil, errors.InvalidArgument("column %q holds strings, not floats", name)
	}
	return c.Floats(), nil
}

// Strings returns the textual values of the named column.
func (s *Step) Strings(name string) ([]string, error) {
	c, err := s.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind() != ColumnString {
		return nil, errors.InvalidArgument("column %q holds floats, not strings", name)
	}
	return c.Strings(), nil
}

// AppendFloat appends a numeric value to the named column, creating the
// column on first use. Appending a float to a string column is rejected.
func (s *Step) AppendFloat(name string, v float64) error {
	c, ok := s.columns[name]
	if !ok {
		c = NewFloatColumn()
		s.columns[name] = c
		s.headers = append(s.headers, name)
	}
	if c.Kind() != ColumnFloat {
		return errors.InvalidArgument("column %q holds strings, cannot append float", name)
	}
	c.appendFloat(v)
	return nil
}

// AppendString appends a textual value to the named column, creating the
// column on first use. Appending a string to a float column is rejected.
func (s *Step) AppendString(name, v string) error {
	c, ok := s.columns[name]
	if !ok {
		c = NewStringColumn()
		s.columns[name] = c
		s.headers = append(s.headers, name)
	}
	if c.Kind() != ColumnString {
		return errors.InvalidArgument("column %q holds floats, cannot append string", name)
	}
	c.appendString(v)
	return nil
}
