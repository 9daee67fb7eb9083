package pricing

import "testing"

func TestResolveFixed(t *testing.T) {
	terms := Terms{Type: Fixed, FixedPrice: 3000}
	// duration is irrelevant, including an unparsed one
	for _, dur := range []float64{0, 5, 999, ParseDuration("abc")} {
		if got := Resolve(terms, dur, 0); got != 3000 {
			t.Errorf("duration %v: got %d, want 3000", dur, got)
		}
	}
	if got := Resolve(Terms{Type: Fixed}, 10, 0); got != 0 {
		t.Errorf("unset fixed price: got %d, want 0", got)
	}
}

func TestResolveStepped(t *testing.T) {
	terms := Terms{Type: Stepped, Steps: []Step{
		{UpTo: 10, Price: 1000},
		{UpTo: 30, Price: 2500},
	}}
	cases := []struct {
		duration float64
		want     int64
	}{
		{5, 1000},
		{10, 1000}, // upper bound is inclusive
		{11, 2500},
		{30, 2500},
		{999, 2500}, // overflow bills at the top tier
	}
	for _, tc := range cases {
		if got := Resolve(terms, tc.duration, 0); got != tc.want {
			t.Errorf("duration %v: got %d, want %d", tc.duration, got, tc.want)
		}
	}
}

func TestResolveSteppedUnsorted(t *testing.T) {
	terms := Terms{Type: Stepped, Steps: []Step{
		{UpTo: 30, Price: 2500},
		{UpTo: 10, Price: 1000},
	}}
	if got := Resolve(terms, 5, 0); got != 1000 {
		t.Errorf("unsorted steps: got %d, want 1000", got)
	}
}

func TestResolveSteppedEmpty(t *testing.T) {
	if got := Resolve(Terms{Type: Stepped}, 42, 0); got != 0 {
		t.Errorf("empty steps: got %d, want 0", got)
	}
}

func TestResolveLinear(t *testing.T) {
	terms := Terms{Type: Linear, UnitPrice: 500, Unit: 5}
	cases := []struct {
		duration float64
		want     int64
	}{
		{7, 1000}, // ceil(7/5) = 2 units
		{5, 500},
		{0, 0},
		{5.1, 1000},
	}
	for _, tc := range cases {
		if got := Resolve(terms, tc.duration, 0); got != tc.want {
			t.Errorf("duration %v: got %d, want %d", tc.duration, got, tc.want)
		}
	}
}

func TestResolveLinearZeroUnit(t *testing.T) {
	// unit <= 0 falls back to 1 instead of dividing by zero
	terms := Terms{Type: Linear, UnitPrice: 100, Unit: 0}
	if got := Resolve(terms, 3, 0); got != 300 {
		t.Errorf("got %d, want 300", got)
	}
}

func TestResolvePerformance(t *testing.T) {
	terms := Terms{Type: Performance, Percentage: 20}
	if got := Resolve(terms, 0, 100000); got != 20000 {
		t.Errorf("got %d, want 20000", got)
	}
	// duration must not influence the result
	if got := Resolve(terms, 999, 100000); got != 20000 {
		t.Errorf("with duration: got %d, want 20000", got)
	}
	// rounding, not truncation
	if got := Resolve(Terms{Type: Performance, Percentage: 0.5}, 0, 101); got != 1 {
		t.Errorf("rounding: got %d, want 1", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	terms := []Terms{
		{Type: Fixed, FixedPrice: 3000},
		{Type: Stepped, Steps: []Step{{UpTo: 30, Price: 2500}, {UpTo: 10, Price: 1000}}},
		{Type: Linear, UnitPrice: 500, Unit: 5},
		{Type: Performance, Percentage: 20},
	}
	for _, tm := range terms {
		first := Resolve(tm, 17, 50000)
		second := Resolve(tm, 17, 50000)
		if first != second {
			t.Errorf("%s: %d != %d", tm.Type, first, second)
		}
	}
}

func TestResolveNeverNegative(t *testing.T) {
	for _, tm := range []Terms{
		{Type: Fixed, FixedPrice: -100},
		{Type: Linear, UnitPrice: -500, Unit: 5},
		{Type: Performance, Percentage: -20},
	} {
		if got := Resolve(tm, 10, 1000); got != 0 {
			t.Errorf("%s: got %d, want 0", tm.Type, got)
		}
	}
}
