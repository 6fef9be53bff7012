package check

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Prober sends a single ICMP echo request and waits for the matching reply,
// returning the elapsed round-trip time. Implementations decide how the
// transport is opened (raw vs. datagram socket); the sampling algorithm does
// not change with the transport.
type Prober interface {
	Probe(seq int) (time.Duration, error)
	Close() error
}

// Sampler drives a Prober through a fixed number of strictly sequential
// probes, sleeping for one generated interval between consecutive probes.
type Sampler struct {
	Count     int
	Intervals []time.Duration

	sleep func(time.Duration)
}

// NewSampler returns a Sampler for count probes spaced by intervals. An
// exhausted or empty interval sequence means the next probe is sent
// immediately after the previous reply.
func NewSampler(count int, intervals []time.Duration) *Sampler {
	return &Sampler{
		Count:     count,
		Intervals: intervals,
		sleep:     time.Sleep,
	}
}

// Run collects the full sample sequence in send order. The first failing
// probe aborts the whole run; partial samples are discarded rather than fed
// into a best-effort aggregate.
func (s *Sampler) Run(p Prober) ([]time.Duration, error) {
	durations := make([]time.Duration, 0, s.Count)

	next := 0
	for i := 0; i < s.Count; i++ {
		rtt, err := p.Probe(i)
		if err != nil {
			return nil, err
		}
		logrus.Debugf("Ping round %d, duration: %v", i+1, rtt)
		durations = append(durations, rtt)

		if i < s.Count-1 && next < len(s.Intervals) {
			interval := s.Intervals[next]
			next++
			logrus.Debugf("Sleeping for %v...", interval)
			s.sleep(interval)
		}
	}

	logrus.Debug("Ping durations: ", durations)

	return durations, nil
}
