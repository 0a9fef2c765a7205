package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  NotFound("no cycle with index %d", 4),
			want: "[not_found] no cycle with index 4",
		},
		{
			name: "with cause",
			err:  Parse(io.ErrUnexpectedEOF, "row 12"),
			want: "[parse] row 12: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindChecks(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsInvalidArgument(InvalidArgument("bad")))
	assert.True(t, IsParse(Parse(nil, "bad row")))
	assert.True(t, IsReuse(Reuse("already read")))

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(stderrors.New("plain")))
	assert.False(t, IsParse(NotFound("gone")))
}

func TestWrappedKindSurvives(t *testing.T) {
	inner := Parse(nil, "bad numeric field")
	wrapped := fmt.Errorf("reading file x.csv: %w", inner)

	assert.True(t, IsParse(wrapped))
	assert.Equal(t, KindParse, KindOf(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("open failed")
	err := Parse(cause, "cannot read source")
	assert.ErrorIs(t, err, cause)
}
