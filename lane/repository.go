package lane

import (
	"context"
	"time"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/location"
)

// LegFilter selects legs of one mode valid on Date for one of the given
// containers. Empty From or To sets match any point.
type LegFilter struct {
	Mode       Mode
	From       []location.ID
	To         []location.ID
	Date       time.Time
	Containers []container.ID
}

// Accepts reports whether the leg passes the filter.
func (f LegFilter) Accepts(l Leg) bool {
	return l.Mode() == f.Mode &&
		l.Covers(f.Date) &&
		containsPoint(f.From, l.Start) &&
		containsPoint(f.To, l.End) &&
		containsContainer(f.Containers, l.Container.ID)
}

// DropFilter selects drop fees of one tier valid on Date whose container is
// one of Containers or unset.
type DropFilter struct {
	Tier       Tier
	Date       time.Time
	Containers []container.ID
}

// Accepts reports whether the fee passes the filter.
func (f DropFilter) Accepts(d DropFee) bool {
	if d.Tier() != f.Tier || !d.Covers(f.Date) {
		return false
	}
	return d.Container == nil || containsContainer(f.Containers, *d.Container)
}

// Side tells whether a terminal is a departure or a destination point.
type Side int

// Terminal sides.
const (
	Departure Side = iota
	Destination
)

// Terminal is a point some carrier departs from or arrives at by a leg valid
// on the requested date.
type Terminal struct {
	Point   location.ID
	Carrier string
}

// Repository is the read side of the trade-lane store. Implementations return
// legs and fees ordered by ID.
type Repository interface {
	FindLegs(ctx context.Context, f LegFilter) ([]Leg, error)
	FindDropFees(ctx context.Context, f DropFilter) ([]DropFee, error)
	Terminals(ctx context.Context, side Side, date time.Time) ([]Terminal, error)
}

func containsPoint(set []location.ID, id location.ID) bool {
	if len(set) == 0 {
		return true
	}
	for _, p := range set {
		if p == id {
			return true
		}
	}
	return false
}

func containsContainer(set []container.ID, id container.ID) bool {
	for _, c := range set {
		if c == id {
			return true
		}
	}
	return false
}
