package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTarget is returned when a ratio has no meaningful denominator.
var ErrInvalidTarget = errors.New("invalid progress target")

// OutputRatio returns current/target as a percentage. It never yields a
// non-finite value: target <= 0 or non-finite inputs return ErrInvalidTarget.
func OutputRatio(current, target float64) (float64, error) {
	if math.IsNaN(current) || math.IsInf(current, 0) || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0, fmt.Errorf("%w: non-finite input %v/%v", ErrInvalidTarget, current, target)
	}
	if target <= 0 {
		return 0, fmt.Errorf("%w: target %v", ErrInvalidTarget, target)
	}
	return current / target * 100, nil
}

// ClampPercent bounds v to [0,100]; NaN maps to 0.
func ClampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Progress is what a progress bar draws. Valid is false when the ratio
// could not be computed; Percent is then 0.
type Progress struct {
	Percent float64 `json:"percent"`
	Raw     float64 `json:"raw"`
	Valid   bool    `json:"valid"`
}

func NewProgress(current, target float64) Progress {
	ratio, err := OutputRatio(current, target)
	if err != nil {
		return Progress{}
	}
	return Progress{Percent: ClampPercent(ratio), Raw: ratio, Valid: true}
}

// PercentProgress wraps a value that is already a percentage.
func PercentProgress(v float64) Progress {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Progress{}
	}
	return Progress{Percent: ClampPercent(v), Raw: v, Valid: true}
}
