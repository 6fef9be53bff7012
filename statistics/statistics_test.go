package statistics

import (
	"errors"
	"testing"
	"time"
)

// Fixture with an even number of samples (nine deltas).
var irregularDurations = []time.Duration{
	270279792, 270400049, 270242514, 269988869, 270157314,
	270096136, 270105637, 270003857, 270192099, 270035557,
}

func TestAbsDiff(t *testing.T) {
	a := 100 * time.Millisecond
	b := 100*time.Millisecond + 100*time.Microsecond

	if got := absDiff(a, b); got != 100*time.Microsecond {
		t.Fatalf("expected 100µs got %v", got)
	}
	if absDiff(a, b) != absDiff(b, a) {
		t.Fatal("absolute difference must be symmetric")
	}
	if got := absDiff(a, a); got != 0 {
		t.Fatalf("expected 0 got %v", got)
	}
}

func TestDeltasSimple(t *testing.T) {
	durations := []time.Duration{
		100000000, 100100000, 100200000, 100300000,
	}
	expected := []time.Duration{100000, 100000, 100000}

	deltas, err := Deltas(durations)
	if err != nil {
		t.Fatalf("Deltas: %v", err)
	}
	if len(deltas) != len(expected) {
		t.Fatalf("expected %d deltas got %d", len(expected), len(deltas))
	}
	for i := range expected {
		if deltas[i] != expected[i] {
			t.Fatalf("delta %d: expected %v got %v", i, expected[i], deltas[i])
		}
	}
}

func TestDeltasPreservesTemporalOrder(t *testing.T) {
	durations := []time.Duration{
		100000000, 100101200, 101200030, 100310900,
	}
	expected := []time.Duration{101200, 1098830, 889130}

	deltas, err := Deltas(durations)
	if err != nil {
		t.Fatalf("Deltas: %v", err)
	}
	for i := range expected {
		if deltas[i] != expected[i] {
			t.Fatalf("delta %d: expected %v got %v", i, expected[i], deltas[i])
		}
	}
}

func TestDeltasInsufficientSamples(t *testing.T) {
	for _, durations := range [][]time.Duration{nil, {100000000}} {
		_, err := Deltas(durations)
		var insufficient *InsufficientSamplesError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientSamplesError got %v", err)
		}
		if insufficient.Count != len(durations) {
			t.Fatalf("expected count %d got %d", len(durations), insufficient.Count)
		}
	}
}

func TestAggregateUniformDeltas(t *testing.T) {
	durations := make([]time.Duration, 0, 10)
	for i := 0; i < 10; i++ {
		durations = append(durations, 100*time.Millisecond+time.Duration(i)*100*time.Microsecond)
	}

	deltas, err := Deltas(durations)
	if err != nil {
		t.Fatalf("Deltas: %v", err)
	}

	for _, method := range []Method{Average, Median, Max, Min} {
		jitter, err := Aggregate(method, deltas)
		if err != nil {
			t.Fatalf("Aggregate(%v): %v", method, err)
		}
		if got := Round(jitter, 3); got != 0.1 {
			t.Fatalf("%v: expected 0.1 got %v", method, got)
		}
	}
}

func TestAggregateEvenIrregularDurations(t *testing.T) {
	deltas, err := Deltas(irregularDurations)
	if err != nil {
		t.Fatalf("Deltas: %v", err)
	}

	cases := []struct {
		method   Method
		expected float64
	}{
		{Average, 0.135236},
		{Median, 0.156542},
		{Max, 0.253645},
		{Min, 0.009501},
	}
	for _, c := range cases {
		jitter, err := Aggregate(c.method, deltas)
		if err != nil {
			t.Fatalf("Aggregate(%v): %v", c.method, err)
		}
		if got := Round(jitter, 6); got != c.expected {
			t.Fatalf("%v: expected %v got %v", c.method, c.expected, got)
		}
	}
}

func TestAggregateOddIrregularDurations(t *testing.T) {
	deltas, err := Deltas(irregularDurations[:9])
	if err != nil {
		t.Fatalf("Deltas: %v", err)
	}

	cases := []struct {
		method   Method
		expected float64
	}{
		{Average, 0.132572},
		{Median, 0.138896},
		{Max, 0.253645},
		{Min, 0.009501},
	}
	for _, c := range cases {
		jitter, err := Aggregate(c.method, deltas)
		if err != nil {
			t.Fatalf("Aggregate(%v): %v", c.method, err)
		}
		if got := Round(jitter, 6); got != c.expected {
			t.Fatalf("%v: expected %v got %v", c.method, c.expected, got)
		}
	}
}

func TestAggregateEmptyDeltas(t *testing.T) {
	for _, method := range []Method{Max, Min} {
		_, err := Aggregate(method, nil)
		if !errors.Is(err, ErrEmptyDeltas) {
			t.Fatalf("%v: expected ErrEmptyDeltas got %v", method, err)
		}
	}
}

func TestRoundIsIdempotent(t *testing.T) {
	v := Round(0.1352361111, 6)
	if got := Round(v, 6); got != v {
		t.Fatalf("expected %v got %v", v, got)
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	// 1.25 and 12.5 are exactly representable, so the half case is real.
	if got := Round(1.25, 1); got != 1.3 {
		t.Fatalf("expected 1.3 got %v", got)
	}
	if got := Round(-1.25, 1); got != -1.3 {
		t.Fatalf("expected -1.3 got %v", got)
	}
	if got := Round(2.5, 0); got != 3 {
		t.Fatalf("expected 3 got %v", got)
	}
}

func TestParseMethod(t *testing.T) {
	cases := []struct {
		in       string
		expected Method
	}{
		{"average", Average}, {"avg", Average}, {"mean", Average}, {"Average", Average},
		{"median", Median}, {"med", Median},
		{"max", Max}, {"maximum", Max},
		{"min", Min}, {"minimum", Min},
	}
	for _, c := range cases {
		m, err := ParseMethod(c.in)
		if err != nil {
			t.Fatalf("ParseMethod(%q): %v", c.in, err)
		}
		if m != c.expected {
			t.Fatalf("ParseMethod(%q): expected %v got %v", c.in, c.expected, m)
		}
	}

	if _, err := ParseMethod("mode"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestMethodString(t *testing.T) {
	cases := map[Method]string{
		Average: "Average",
		Median:  "Median",
		Max:     "Max",
		Min:     "Min",
	}
	for m, expected := range cases {
		if got := m.String(); got != expected {
			t.Fatalf("expected %q got %q", expected, got)
		}
	}
}
