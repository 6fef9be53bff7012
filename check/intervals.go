package check

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// GenerateIntervals produces count inter-probe delays from the inclusive
// [minInterval, maxInterval] millisecond bound. Equal non-zero bounds give a
// fixed delay, equal zero bounds give no delay at all, and an inverted bound
// gives an empty sequence without panicking; the caller is expected to have
// rejected that combination already. The function performs no I/O and never
// sleeps, all randomness comes from the supplied rng.
func GenerateIntervals(rng *rand.Rand, count int, minInterval, maxInterval uint64) []time.Duration {
	if minInterval > maxInterval {
		logrus.Debugf("Invalid min and max interval: min: %d, max: %d. No intervals will be generated.", minInterval, maxInterval)
		return nil
	}

	if minInterval == 0 && maxInterval == 0 {
		logrus.Debug("Min and max interval are both 0. No intervals will be generated.")
		return nil
	}

	intervals := make([]time.Duration, 0, count)

	if minInterval == maxInterval {
		logrus.Debugf("Min and max interval are equal: %dms. Intervals will not be randomized.", minInterval)
		for i := 0; i < count; i++ {
			intervals = append(intervals, time.Duration(minInterval)*time.Millisecond)
		}
		logrus.Debug("Intervals: ", intervals)
		return intervals
	}

	logrus.Debugf("Generating %d random intervals between %dms and %dms...", count, minInterval, maxInterval)

	// span wraps to 0 when the bound covers the whole uint64 range
	span := maxInterval - minInterval + 1
	for i := 0; i < count; i++ {
		ms := rng.Uint64()
		if span != 0 {
			ms = minInterval + ms%span
		}
		intervals = append(intervals, time.Duration(ms)*time.Millisecond)
	}

	logrus.Debug("Intervals: ", intervals)

	return intervals
}
