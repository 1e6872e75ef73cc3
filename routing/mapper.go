package routing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/itinerary"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/pathfinder"
)

// Loading conditions reported by sea segments.
const (
	condFreeIn    = "FI"
	condLinerOut  = "LO"
	condFreeOut   = "FOR"
	serviceGuard  = "guard"
	serviceDrop   = "drop"
	carrierPrefix = "internal:"
)

// mapper turns internal chains into itineraries.
type mapper struct {
	source   string
	resolver *location.Resolver
}

func (m mapper) itinerary(ctx context.Context, c pathfinder.Chain) (itinerary.Itinerary, error) {
	if err := c.Validate(); err != nil {
		return itinerary.Itinerary{}, err
	}
	trailing := trailingRail(c.Legs)
	it := itinerary.Itinerary{
		Source:        m.source,
		Segments:      make([]itinerary.Segment, 0, len(c.Legs)),
		PossiblyStale: c.PossiblyStale,
	}
	for i, l := range c.Legs {
		s, err := m.segment(ctx, l, i >= trailing)
		if err != nil {
			return itinerary.Itinerary{}, err
		}
		it.Segments = append(it.Segments, s)
	}
	if c.Drop != nil {
		it.Drop = &itinerary.Drop{
			Price: money.NewPrice(c.Drop.Price, currency(c.Drop.Currency, money.USD)),
			Tier:  c.Tier.String(),
		}
	}
	return it, nil
}

func (m mapper) segment(ctx context.Context, l lane.Leg, trailing bool) (itinerary.Segment, error) {
	start, err := m.resolver.Resolve(ctx, l.Start)
	if err != nil {
		return itinerary.Segment{}, err
	}
	end, err := m.resolver.Resolve(ctx, l.End)
	if err != nil {
		return itinerary.Segment{}, err
	}
	spec := l.Container
	if spec.Name == "" {
		spec.Name = spec.DisplayName()
	}
	s := itinerary.Segment{
		Carrier:       l.Carrier.Name,
		EffectiveFrom: l.EffectiveFrom,
		EffectiveTo:   l.EffectiveTo,
		Start:         start,
		End:           end,
		Container:     &spec,
		Services:      map[string]*money.Price{},
		CarrierKey:    fmt.Sprintf("%s%d", carrierPrefix, l.Carrier.ID),
		StartKey:      l.Start.String(),
		EndKey:        l.End.String(),
	}

	switch t := l.Tariff.(type) {
	case lane.SeaTariff:
		s.Mode = itinerary.Sea
		cur := currency(t.Currency, money.USD)
		switch {
		case t.FILO != nil:
			s.Price = money.NewPrice(*t.FILO, cur)
			s.BeginCond, s.FinishCond = condFreeIn, condLinerOut
		case t.FIFO != nil:
			s.Price = money.NewPrice(*t.FIFO, cur)
			s.BeginCond, s.FinishCond = condFreeIn, condFreeOut
		default:
			return itinerary.Segment{}, fmt.Errorf("sea leg %d has no price", l.ID)
		}
	case lane.RailTariff:
		s.Mode = itinerary.Rail
		cur := currency(t.Currency, money.RUB)
		s.Price = money.NewPrice(t.Price, cur)
		if t.Guard != nil {
			s.Services[serviceGuard] = price(*t.Guard, cur)
		}
		if trailing && t.Drop != nil {
			s.Services[serviceDrop] = price(*t.Drop, currency(t.DropCurrency, money.USD))
		}
	default:
		return itinerary.Segment{}, fmt.Errorf("leg %d has no tariff", l.ID)
	}
	return s, nil
}

// trailingRail returns the index of the first rail leg of the run of rail legs
// ending the chain after its last sea leg. Chains without a sea leg have no
// such run.
func trailingRail(legs []lane.Leg) int {
	i := len(legs)
	for i > 0 && legs[i-1].Mode() == lane.Rail {
		i--
	}
	if i == 0 {
		return len(legs)
	}
	return i
}

func currency(c, fallback money.Currency) money.Currency {
	if c == "" {
		return fallback
	}
	return c.Normalize()
}

func price(amount decimal.Decimal, c money.Currency) *money.Price {
	p := money.NewPrice(amount, c)
	return &p
}
