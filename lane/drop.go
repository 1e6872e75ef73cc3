package lane

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
)

// Tier tells which boundary legs of a chain a drop fee is keyed on.
type Tier int

// Drop fee tiers.
const (
	NoTier Tier = iota
	Full
	RailOnly
	SeaOnly
)

func (t Tier) String() string {
	switch t {
	case Full:
		return "full"
	case RailOnly:
		return "rail"
	case SeaOnly:
		return "sea"
	}
	return "none"
}

// DropFee is a ground handling charge for moving a container between a sea leg
// and a rail leg at a shared point. Unset fields act as wildcards.
type DropFee struct {
	ID            int64
	Carrier       *CarrierID
	Container     *container.ID
	SeaStart      *location.ID
	SeaEnd        *location.ID
	RailStart     *location.ID
	RailEnd       *location.ID
	EffectiveFrom time.Time
	EffectiveTo   time.Time
	Price         decimal.Decimal
	Currency      money.Currency
}

// Tier derives the tier of the fee from the point fields it sets. A fee that
// sets no point at all has NoTier and never attaches to a chain.
func (d DropFee) Tier() Tier {
	sea := d.SeaStart != nil || d.SeaEnd != nil
	rail := d.RailStart != nil || d.RailEnd != nil
	switch {
	case sea && rail:
		return Full
	case rail:
		return RailOnly
	case sea:
		return SeaOnly
	}
	return NoTier
}

// Covers reports whether date falls inside the validity window of the fee.
func (d DropFee) Covers(date time.Time) bool {
	return covers(d.EffectiveFrom, d.EffectiveTo, date)
}

// Matches reports whether the fee applies to the boundary formed by the sea leg
// and the rail leg adjacent to it. Full and rail-only fees are keyed on the
// rail carrier, sea-only fees on the sea carrier.
func (d DropFee) Matches(sea, rail Leg) bool {
	switch d.Tier() {
	case Full:
		return d.matchSea(sea) && d.matchRail(rail) && d.matchCarrier(rail)
	case RailOnly:
		return d.matchRail(rail) && d.matchCarrier(rail)
	case SeaOnly:
		return d.matchSea(sea) && d.matchCarrier(sea)
	}
	return false
}

func (d DropFee) matchSea(l Leg) bool {
	return eq(d.SeaStart, l.Start) && eq(d.SeaEnd, l.End) && d.matchContainer(l)
}

func (d DropFee) matchRail(l Leg) bool {
	return eq(d.RailStart, l.Start) && eq(d.RailEnd, l.End) && d.matchContainer(l)
}

func (d DropFee) matchCarrier(l Leg) bool {
	return d.Carrier == nil || *d.Carrier == l.Carrier.ID
}

func (d DropFee) matchContainer(l Leg) bool {
	return d.Container == nil || *d.Container == l.Container.ID
}

func eq(want *location.ID, got location.ID) bool {
	return want == nil || *want == got
}
