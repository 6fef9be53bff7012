package check

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Measure runs the sampling half of the pipeline: resolve the host, generate
// the inter-probe delays and collect the round-trip durations. The
// returned sequence is in strict send order and has length samples on
// success; any failure aborts the run with no partial result.
func Measure(host string, socketType SocketType, samples int, timeout time.Duration, minInterval, maxInterval uint64, rng *rand.Rand) ([]time.Duration, error) {
	ip, err := Resolve(host)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Resolved %v to %v", host, ip)

	intervals := GenerateIntervals(rng, samples-1, minInterval, maxInterval)

	pinger, err := NewPinger(ip, socketType, timeout)
	if err != nil {
		return nil, err
	}
	defer pinger.Close()

	return NewSampler(samples, intervals).Run(pinger)
}
