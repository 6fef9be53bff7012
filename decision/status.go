// Package decision classifies an aggregated jitter value against the
// operator supplied alert thresholds and renders the terminal status line.
package decision

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/checkkit/check-jitter/statistics"
)

// Thresholds pairs the optional warning and critical alert ranges. At least
// one must be present for a meaningful evaluation.
type Thresholds struct {
	Warning  *Range
	Critical *Range
}

// State is the monitoring-plugin severity. The numeric value doubles as the
// process exit code.
type State int

const (
	StateOK State = iota
	StateWarning
	StateCritical
	StateUnknown
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarning:
		return "WARNING"
	case StateCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Status is the terminal value of the pipeline: a classification plus the
// data needed to render it. It is constructed once per invocation and
// rendered immediately.
type Status struct {
	State      State
	Method     statistics.Method
	Value      float64
	Thresholds *Thresholds

	// reason holds the diagnostic for StateUnknown, without the leading
	// severity tag.
	reason string
}

// Evaluate classifies a rounded jitter value. The critical range is checked
// before the warning range; a value breaching both reports critical.
func Evaluate(method statistics.Method, value float64, thresholds *Thresholds) Status {
	logrus.Info("Evaluating jitter: ", value)

	s := Status{Method: method, Value: value, Thresholds: thresholds}

	if thresholds.Critical != nil && thresholds.Critical.Check(value) {
		logrus.Infof("Jitter %v breaches critical threshold %v", value, thresholds.Critical)
		s.State = StateCritical
		return s
	}
	if thresholds.Warning != nil && thresholds.Warning.Check(value) {
		logrus.Infof("Jitter %v breaches warning threshold %v", value, thresholds.Warning)
		s.State = StateWarning
		return s
	}

	s.State = StateOK
	return s
}

// UnknownError wraps any pipeline failure in the umbrella diagnostic.
func UnknownError(err error) Status {
	return unknown(fmt.Sprintf("An error occurred: '%s'", err))
}

// UnknownInvalidAddr reports a host string that is neither a literal IP nor
// a plausible hostname.
func UnknownInvalidAddr(host string) Status {
	return unknown(fmt.Sprintf("Invalid address or hostname: %s", host))
}

// UnknownInvalidInterval reports an out-of-order min/max interval bound.
func UnknownInvalidInterval(minInterval, maxInterval uint64) Status {
	return unknown(fmt.Sprintf("Invalid min/max interval: min: %d, max: %d", minInterval, maxInterval))
}

// UnknownUsage reports a command line parsing failure.
func UnknownUsage(msg string) Status {
	trimmed := strings.TrimPrefix(strings.TrimSpace(msg), "error: ")
	return unknown(fmt.Sprintf("Command line parsing produced an error: %s", trimmed))
}

// UnknownNoThresholds reports that neither threshold was supplied.
func UnknownNoThresholds() Status {
	return unknown("No thresholds provided. Provide at least one threshold.")
}

// UnknownRangeParse reports a malformed threshold range string.
func UnknownRangeParse(spec string, err error) Status {
	return unknown(fmt.Sprintf("Unable to parse range '%s' with error: %s", spec, err))
}

func unknown(reason string) Status {
	return Status{State: StateUnknown, reason: reason}
}

// ExitCode maps the classification onto the monitoring-plugin exit code.
func (s Status) ExitCode() int {
	return int(s.State)
}

// String renders the single line report. For OK/WARNING/CRITICAL the line
// carries a performance data segment whose key names the statistic used;
// missing thresholds leave their slot blank and the trailing 0 is the
// metric's defined floor.
func (s Status) String() string {
	if s.State == StateUnknown {
		return "UNKNOWN - " + s.reason
	}

	label := s.Method.String() + " Jitter"
	value := formatFloat(s.Value)

	var warning, critical string
	if s.Thresholds != nil && s.Thresholds.Warning != nil {
		warning = s.Thresholds.Warning.String()
	}
	if s.Thresholds != nil && s.Thresholds.Critical != nil {
		critical = s.Thresholds.Critical.String()
	}

	return fmt.Sprintf("%s - %s: %sms|'%s'=%sms;%s;%s;0", s.State, label, value, label, value, warning, critical)
}
