// Package lane holds the internal trade-lane data the route search works on:
// carriers, point-to-point legs and the drop fees charged between them.
package lane

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
)

// CarrierID uniquely identifies a carrier.
type CarrierID int64

// Carrier is a company offering legs.
type Carrier struct {
	ID   CarrierID
	Name string
}

// Mode is the transport mode of a leg.
type Mode int

// Valid transport modes.
const (
	Sea Mode = iota + 1
	Rail
)

func (m Mode) String() string {
	switch m {
	case Sea:
		return "sea"
	case Rail:
		return "rail"
	}
	return ""
}

// Tariff is the mode specific price part of a leg. It is either a SeaTariff or
// a RailTariff.
type Tariff interface {
	Mode() Mode
}

// SeaTariff prices a sea leg. Either FILO (free in, liner out) or FIFO (free
// in, free out) is set.
type SeaTariff struct {
	FILO     *decimal.Decimal
	FIFO     *decimal.Decimal
	Currency money.Currency
}

// Mode implements Tariff.
func (SeaTariff) Mode() Mode { return Sea }

// RailTariff prices a rail leg: the base price, the container drop-off charge
// and an optional guard surcharge.
type RailTariff struct {
	Price        decimal.Decimal
	Drop         *decimal.Decimal
	Guard        *decimal.Decimal
	Currency     money.Currency
	DropCurrency money.Currency
}

// Mode implements Tariff.
func (RailTariff) Mode() Mode { return Rail }

// Leg is one carrier's offer to move one container spec from Start to End
// within the validity window [EffectiveFrom, EffectiveTo].
type Leg struct {
	ID            int64
	Carrier       Carrier
	Container     container.Spec
	Start         location.ID
	End           location.ID
	EffectiveFrom time.Time
	EffectiveTo   time.Time
	Tariff        Tariff
}

// Mode returns the transport mode of the leg.
func (l Leg) Mode() Mode {
	if l.Tariff == nil {
		return 0
	}
	return l.Tariff.Mode()
}

// Covers reports whether date falls inside the validity window. Both ends are
// inclusive and compared as calendar days.
func (l Leg) Covers(date time.Time) bool {
	return covers(l.EffectiveFrom, l.EffectiveTo, date)
}

// ExpiredBy reports whether the validity window ended before date.
func (l Leg) ExpiredBy(date time.Time) bool {
	return Day(l.EffectiveTo).Before(Day(date))
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func covers(from, to, date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(from)) && !d.After(Day(to))
}
