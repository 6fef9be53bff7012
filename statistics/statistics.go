// Package statistics turns an ordered sample sequence into a single jitter
// value: absolute deltas between temporally adjacent samples, reduced by one
// of four aggregation methods and rounded to a display precision.
package statistics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Method selects how the delta sequence is reduced to one jitter value.
type Method int

const (
	Average Method = iota
	Median
	Max
	Min
)

// ParseMethod parses an aggregation method name, accepting the common
// aliases (avg, mean, med, maximum, minimum).
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "average", "avg", "mean":
		return Average, nil
	case "median", "med":
		return Median, nil
	case "max", "maximum":
		return Max, nil
	case "min", "minimum":
		return Min, nil
	default:
		return Average, fmt.Errorf("'%s' is not a valid aggregation method", s)
	}
}

func (m Method) String() string {
	switch m {
	case Median:
		return "Median"
	case Max:
		return "Max"
	case Min:
		return "Min"
	default:
		return "Average"
	}
}

// InsufficientSamplesError is returned when fewer than two samples reach the
// delta stage. The CLI enforces a minimum of three, but the invariant is
// checked here independently.
type InsufficientSamplesError struct {
	Count int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("At least 2 samples are required to calculate jitter, got %d.", e.Count)
}

// ErrEmptyDeltas guards Max and Min against a zero length delta list. This
// is a distinct edge from InsufficientSamplesError, which guards the sample
// stage.
var ErrEmptyDeltas = errors.New("The delta count is 0. Cannot calculate jitter.")

// Deltas computes the absolute difference between each pair of temporally
// adjacent samples, preserving order. Adjacency is by send time, never by
// magnitude.
func Deltas(durations []time.Duration) ([]time.Duration, error) {
	if len(durations) < 2 {
		return nil, &InsufficientSamplesError{Count: len(durations)}
	}

	deltas := make([]time.Duration, 0, len(durations)-1)
	for i := 1; i < len(durations); i++ {
		deltas = append(deltas, absDiff(durations[i-1], durations[i]))
	}

	logrus.Debug("Deltas: ", deltas)

	return deltas, nil
}

func absDiff(a, b time.Duration) time.Duration {
	if a > b {
		return a - b
	}
	return b - a
}

// Aggregate reduces the delta sequence to a single jitter value in
// milliseconds, keeping sub-millisecond precision.
func Aggregate(method Method, deltas []time.Duration) (float64, error) {
	switch method {
	case Average:
		return average(deltas), nil
	case Median:
		return median(deltas), nil
	case Max:
		return maximum(deltas)
	case Min:
		return minimum(deltas)
	default:
		return 0, fmt.Errorf("unknown aggregation method: %d", method)
	}
}

func average(deltas []time.Duration) float64 {
	var total time.Duration
	for _, d := range deltas {
		total += d
	}
	logrus.Debug("Sum of deltas: ", total)

	avg := total / time.Duration(len(deltas))
	logrus.Debug("Average jitter duration: ", avg)

	return toMillis(avg)
}

func median(deltas []time.Duration) float64 {
	sorted := make([]time.Duration, len(deltas))
	copy(sorted, deltas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	logrus.Debug("Sorted deltas: ", sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (toMillis(sorted[mid-1]) + toMillis(sorted[mid])) / 2
	}
	return toMillis(sorted[mid])
}

func maximum(deltas []time.Duration) (float64, error) {
	if len(deltas) == 0 {
		return 0, ErrEmptyDeltas
	}
	max := deltas[0]
	for _, d := range deltas[1:] {
		if d > max {
			max = d
		}
	}
	logrus.Debug("Max jitter: ", max)
	return toMillis(max), nil
}

func minimum(deltas []time.Duration) (float64, error) {
	if len(deltas) == 0 {
		return 0, ErrEmptyDeltas
	}
	min := deltas[0]
	for _, d := range deltas[1:] {
		if d < min {
			min = d
		}
	}
	logrus.Debug("Min jitter: ", min)
	return toMillis(min), nil
}

// Round trims the jitter value to the requested number of decimal places
// using half-away-from-zero rounding. Classification always happens on the
// rounded value so the displayed number and the status agree.
func Round(v float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(v*factor) / factor
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
