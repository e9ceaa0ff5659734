package scoring

import (
	"fmt"
	"math"
)

// PriceCurve converts outright-winner betting odds into a roster cost.
// Implied win probability maps through a power curve onto [MinCost,
// MaxCost], so heavy favorites price near the top of the range and
// longshots compress near the bottom instead of spreading linearly.
type PriceCurve struct {
	MinCost  float64
	MaxCost  float64
	Exponent float64
}

// DefaultPriceCurve matches the historical cost spread used for rosters
func DefaultPriceCurve() PriceCurve {
	return PriceCurve{MinCost: 5, MaxCost: 45, Exponent: 0.45}
}

// ImpliedProbability converts American odds to a win probability
func ImpliedProbability(american int) float64 {
	if american == 0 {
		return 0
	}
	o := float64(american)
	if o < 0 {
		return -o / (-o + 100)
	}
	return 100 / (o + 100)
}

// CostFromOdds prices one player from their American outright odds. The
// result is monotonic in the odds: strictly shorter (more favored) odds
// never produce a lower cost, and output is clamped to [MinCost, MaxCost].
func (c PriceCurve) CostFromOdds(american int) float64 {
	p := ImpliedProbability(american)
	if p <= 0 {
		return c.MinCost
	}
	cost := c.MinCost + (c.MaxCost-c.MinCost)*math.Pow(p, c.Exponent)
	return roundCents(math.Min(math.Max(cost, c.MinCost), c.MaxCost))
}

// Calibrate fits the curve exponent so a reference player at refOdds lands
// at refCost. Used when a new season's odds spread needs the cost range
// re-anchored rather than hand-tuned.
func (c *PriceCurve) Calibrate(refOdds int, refCost float64) error {
	p := ImpliedProbability(refOdds)
	if p <= 0 || p >= 1 {
		return fmt.Errorf("reference odds %d yield unusable probability %.3f", refOdds, p)
	}
	if refCost <= c.MinCost || refCost >= c.MaxCost {
		return fmt.Errorf("reference cost %.2f must sit strictly inside [%.2f, %.2f]", refCost, c.MinCost, c.MaxCost)
	}
	c.Exponent = math.Log((refCost-c.MinCost)/(c.MaxCost-c.MinCost)) / math.Log(p)
	return nil
}
