package pricing

import (
	"math"
	"sort"
)

// TariffType selects the pricing formula applied to a task.
type TariffType string

const (
	Fixed       TariffType = "FIXED"
	Stepped     TariffType = "STEPPED"
	Linear      TariffType = "LINEAR"
	Performance TariffType = "PERFORMANCE"
)

// Valid reports whether t is one of the four known tariff types.
func (t TariffType) Valid() bool {
	switch t {
	case Fixed, Stepped, Linear, Performance:
		return true
	}
	return false
}

// Step is one tier of a stepped tariff: work of up to UpTo minutes
// bills at Price.
type Step struct {
	UpTo  float64 `json:"up_to"`
	Price int64   `json:"price"`
}

// Terms is one side (revenue or cost) of a pricing rule. The two
// sides of a rule are resolved independently with the same algorithm,
// so a rule may carry a non-zero revenue and a zero cost (pure
// margin) or the reverse (pure pass-through).
type Terms struct {
	Type       TariffType
	FixedPrice int64
	Steps      []Step
	UnitPrice  int64   // price per billing unit (LINEAR)
	Unit       float64 // billing unit in minutes (LINEAR)
	Percentage float64 // of the performance target (PERFORMANCE)
}

// Resolve computes the amount for one side of a rule, in whole
// currency units. It is a pure function: same inputs, same output.
//
//   - FIXED: the fixed price verbatim, 0 if unset.
//   - STEPPED: steps sorted ascending by UpTo; the first tier whose
//     UpTo >= duration wins. Durations beyond the largest tier bill
//     at the top tier. An empty step list resolves to 0.
//   - LINEAR: usage rounded up to whole billing units, then priced
//     per unit. Unit <= 0 is treated as 1.
//   - PERFORMANCE: round(target * percentage / 100); duration is
//     ignored.
func Resolve(t Terms, durationMinutes float64, performanceTarget int64) int64 {
	var amount int64
	switch t.Type {
	case Fixed:
		amount = t.FixedPrice
	case Stepped:
		amount = resolveStepped(t.Steps, durationMinutes)
	case Linear:
		unit := t.Unit
		if unit <= 0 {
			unit = 1
		}
		if durationMinutes > 0 {
			amount = int64(math.Ceil(durationMinutes/unit)) * t.UnitPrice
		}
	case Performance:
		amount = int64(math.Round(float64(performanceTarget) * t.Percentage / 100))
	}
	if amount < 0 {
		return 0
	}
	return amount
}

func resolveStepped(steps []Step, durationMinutes float64) int64 {
	if len(steps) == 0 {
		return 0
	}
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UpTo < sorted[j].UpTo })
	for _, s := range sorted {
		if s.UpTo >= durationMinutes {
			return s.Price
		}
	}
	// overflow bills at the top band
	return sorted[len(sorted)-1].Price
}
