package pathfinder

import (
	"errors"
	"fmt"

	"github.com/Qalifah/freight/lane"
)

// DefaultPriority is the order drop fee tiers are tried in.
var DefaultPriority = []lane.Tier{lane.Full, lane.RailOnly, lane.SeaOnly}

// ErrInvalidPriority is used when a drop priority names an unknown or repeated
// tier.
var ErrInvalidPriority = errors.New("invalid drop priority")

// Matcher holds the validated order drop fee tiers are tried in. Find runs one
// query variant per tier and keeps the first chain it sees, so a chain never
// carries more than one fee.
type Matcher struct {
	priority []lane.Tier
}

// NewMatcher returns a matcher trying tiers in the given order.
func NewMatcher(priority ...lane.Tier) (Matcher, error) {
	seen := make(map[lane.Tier]bool, len(priority))
	for _, t := range priority {
		if t == lane.NoTier || t > lane.SeaOnly || seen[t] {
			return Matcher{}, fmt.Errorf("%w: %v", ErrInvalidPriority, priority)
		}
		seen[t] = true
	}
	return Matcher{priority: append([]lane.Tier(nil), priority...)}, nil
}

// Tiers returns the tiers in priority order.
func (m Matcher) Tiers() []lane.Tier {
	return append([]lane.Tier(nil), m.priority...)
}

// matchTier returns the first fee of the tier applying to the chain boundary.
func matchTier(tier lane.Tier, legs []lane.Leg, fees []lane.DropFee) *lane.DropFee {
	sea, rail, ok := boundary(legs)
	if !ok {
		return nil
	}
	for i := range fees {
		if fees[i].Tier() == tier && fees[i].Matches(sea, rail) {
			fee := fees[i]
			return &fee
		}
	}
	return nil
}
