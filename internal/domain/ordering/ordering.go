package ordering

import (
	"errors"
	"math"
)

// Gap is the distance between consecutive positions after an append or a
// rebalance. It leaves room for roughly fifty midpoint insertions between any
// two neighbours before float64 resolution runs out.
const Gap = 1000.0

// MinHeadPosition is the smallest successor position that is still halved
// when moving a todo to the head of the list. At or below it the new head
// is placed Gap before its successor instead.
const MinHeadPosition = 1.0

// ErrResolutionExhausted is returned when no position strictly between the
// requested neighbours can be represented.
var ErrResolutionExhausted = errors.New("position resolution exhausted")

// Append returns the position for a todo added after every existing one.
// hasAny reports whether the owner has any todos; max is ignored otherwise.
func Append(max float64, hasAny bool) float64 {
	if !hasAny {
		return Gap
	}
	return max + Gap
}

// Between returns a position strictly between prev and next.
// A nil prev means the head of the list, a nil next the tail.
func Between(prev, next *float64) (float64, error) {
	var pos float64

	switch {
	case prev == nil && next == nil:
		return Gap, nil
	case prev == nil:
		if *next > MinHeadPosition {
			pos = *next / 2
		} else {
			pos = *next - Gap
		}
	case next == nil:
		pos = *prev + Gap
	default:
		if *prev >= *next {
			return 0, ErrResolutionExhausted
		}
		pos = *prev + (*next-*prev)/2
	}

	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0, ErrResolutionExhausted
	}
	if (prev != nil && pos <= *prev) || (next != nil && pos >= *next) {
		return 0, ErrResolutionExhausted
	}

	return pos, nil
}

// Spaced returns n evenly spaced positions: Gap, 2*Gap, ..., n*Gap.
func Spaced(n int) []float64 {
	positions := make([]float64, n)
	for i := range positions {
		positions[i] = float64(i+1) * Gap
	}
	return positions
}

// Dense returns the positions 0, 1, ..., n-1 assigned by a full reorder.
func Dense(n int) []float64 {
	positions := make([]float64, n)
	for i := range positions {
		positions[i] = float64(i)
	}
	return positions
}
