package cycler

// ColumnKind discriminates the storage type of a column.
type ColumnKind int

const (
	// ColumnFloat holds numeric measurement values.
	ColumnFloat ColumnKind = iota
	// ColumnString holds textual values such as timestamps or columns the
	// instrument emits in a non-numeric form.
	ColumnString
)

// Column is one ordered sequence of values for a single header. Values are
// append-only: parsing extends a column, never replaces it.
type Column struct {
	kind    ColumnKind
	floats  []float64
	strings []string
}

// NewFloatColumn creates an empty numeric column.
func NewFloatColumn() *Column { return &Column{kind: ColumnFloat} }

// NewStringColumn creates an empty textual column.
func NewStringColumn() *Column { return &Column{kind: ColumnString} }

// Kind reports the storage type of the column.
func (c *Column) Kind() ColumnKind { return c.kind }

// Len reports the number of values in the column.
func (c *Column) Len() int {
	if c.kind == ColumnString {
		return len(c.strings)
	}
	return len(c.floats)
}

// Floats returns the numeric values. Nil for a string column.
func (c *Column) Floats() []float64 { return c.floats }

// Strings returns the textual values. Nil for a float column.
func (c *Column) Strings() []string { return c.strings }

func (c *Column) appendFloat(v float64)  { c.floats = append(c.floats, v) }
func (c *Column) appendString(s string)  { c.strings = append(c.strings, s) }
