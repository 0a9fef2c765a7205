package cycler

import (
	"battlab/internal/errors"
)

// Selector picks children of a container either by exact identity or by
// walking a numeric range value by value. The zero Selector is not valid;
// use the constructors.
type Selector struct {
	exact    bool
	index    int
	start    int
	stop     int
	stride   int
	hasStart bool
	hasStop  bool
}

// At selects every child whose identity equals index.
func At(index int) Selector {
	return Selector{exact: true, index: index}
}

// All selects the full range from 0 to one past the largest identity present.
func All() Selector {
	return Selector{stride: 1}
}

// Span selects the half-open range [start, stop).
func Span(start, stop int) Selector {
	return Selector{start: start, stop: stop, hasStart: true, hasStop: true, stride: 1}
}

// From selects the range from start to one past the largest identity present.
func From(start int) Selector {
	return Selector{start: start, hasStart: true, stride: 1}
}

// Until selects the half-open range [0, stop).
func Until(stop int) Selector {
	return Selector{stop: stop, hasStop: true, stride: 1}
}

// Stride returns a copy of the selector that walks its range with the given
// stride. Stride has no effect on exact selectors.
func (s Selector) Stride(n int) Selector {
	s.stride = n
	return s
}

// resolve walks the selector and collects the children matching each visited
// identity value. lookup must return every child for one identity value.
// Missing values inside a range are skipped; the caller turns an empty
// result (ok == false) into its own not-found error.
func resolveSelector[T any](sel Selector, largest int, lookup func(int) []T) ([]T, bool, error) {
	if sel.exact {
		out := lookup(sel.index)
		return out, len(out) > 0, nil
	}
	if sel.stride < 1 {
		return nil, false, errors.InvalidArgument("selector stride must be >= 1, got %d", sel.stride)
	}
	start := 0
	if sel.hasStart {
		start = sel.start
	}
	stop := largest + 1
	if sel.hasStop {
		stop = sel.stop
	}
	var out []T
	for i := start; i < stop; i += sel.stride {
		out = append(out, lookup(i)...)
	}
	return out, len(out) > 0, nil
}
