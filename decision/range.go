package decision

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Range is a monitoring-plugin threshold range. By default a value alerts
// when it falls outside [Start, End]; an @-prefixed range inverts the
// polarity and alerts inside the range instead.
//
//	10      alert when < 0 or > 10
//	10:     alert when < 10
//	~:10    alert when > 10
//	10:20   alert when < 10 or > 20
//	@10:20  alert when >= 10 and <= 20
type Range struct {
	Inside bool
	Start  float64 // -Inf when the range starts with "~"
	End    float64 // +Inf when the range ends with ":"
}

// RangeParseError reports a malformed threshold range string.
type RangeParseError struct {
	Spec   string
	Reason string
}

func (e *RangeParseError) Error() string { return e.Reason }

// ParseRange parses the monitoring-plugin range syntax.
func ParseRange(spec string) (*Range, error) {
	s := strings.TrimSpace(spec)

	r := &Range{}
	if strings.HasPrefix(s, "@") {
		r.Inside = true
		s = s[1:]
	}
	if s == "" {
		return nil, &RangeParseError{Spec: spec, Reason: "empty range"}
	}

	var start, end string
	if i := strings.Index(s, ":"); i >= 0 {
		start, end = s[:i], s[i+1:]
	} else {
		// A bare number N means 0:N.
		start, end = "", s
	}

	switch start {
	case "":
		r.Start = 0
	case "~":
		r.Start = math.Inf(-1)
	default:
		v, err := strconv.ParseFloat(start, 64)
		if err != nil {
			return nil, &RangeParseError{Spec: spec, Reason: fmt.Sprintf("invalid range start '%s'", start)}
		}
		r.Start = v
	}

	if end == "" {
		r.End = math.Inf(1)
	} else {
		v, err := strconv.ParseFloat(end, 64)
		if err != nil {
			return nil, &RangeParseError{Spec: spec, Reason: fmt.Sprintf("invalid range end '%s'", end)}
		}
		r.End = v
	}

	if r.Start > r.End {
		return nil, &RangeParseError{Spec: spec, Reason: "range start must not be greater than range end"}
	}

	return r, nil
}

// Check reports whether value raises an alert for this range.
func (r *Range) Check(value float64) bool {
	outside := value < r.Start || value > r.End
	if r.Inside {
		return !outside
	}
	return outside
}

// String renders the canonical form of the range, which is what appears in
// the performance data slots of the report line.
func (r *Range) String() string {
	var sb strings.Builder
	if r.Inside {
		sb.WriteByte('@')
	}
	if math.IsInf(r.Start, -1) {
		sb.WriteByte('~')
	} else {
		sb.WriteString(formatFloat(r.Start))
	}
	sb.WriteByte(':')
	if !math.IsInf(r.End, 1) {
		sb.WriteString(formatFloat(r.End))
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
