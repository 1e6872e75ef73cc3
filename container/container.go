// Package container describes container specifications and the rule that
// selects the specifications fit for a cargo.
package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID uniquely identifies a container specification.
type ID int64

// Type is the container body type.
type Type string

// Known container types.
const (
	DC Type = "DC"
	HC Type = "HC"
)

// Spec is a container specification: a nominal size and type together with the
// weight band it is rated for. Weights are in metric tonnes; a nil WeightTo
// means the band has no upper bound.
type Spec struct {
	ID         ID               `json:"id"`
	Size       int              `json:"size"`
	Type       Type             `json:"type"`
	WeightFrom decimal.Decimal  `json:"weight_from"`
	WeightTo   *decimal.Decimal `json:"weight_to,omitempty"`
	Name       string           `json:"name"`
}

var kilosPerTonne = decimal.NewFromInt(1000)

// Tonnes converts a cargo weight given in kilograms into tonnes.
func Tonnes(kilograms int64) decimal.Decimal {
	return decimal.NewFromInt(kilograms).Div(kilosPerTonne)
}

// Fits reports whether a cargo of the given weight in kilograms and requested
// size is carried by this spec: WeightFrom <= w < WeightTo (or WeightTo
// unbounded) and Size equal to the requested size.
func (s Spec) Fits(kilograms int64, size int) bool {
	if s.Size != size {
		return false
	}
	w := Tonnes(kilograms)
	if w.LessThan(s.WeightFrom) {
		return false
	}
	return s.WeightTo == nil || w.LessThan(*s.WeightTo)
}

// DisplayName renders the conventional name, e.g. 20'DC 0-24t.
func (s Spec) DisplayName() string {
	if s.WeightTo == nil {
		return fmt.Sprintf("%d'%s", s.Size, s.Type)
	}
	return fmt.Sprintf("%d'%s %s-%st", s.Size, s.Type, s.WeightFrom, *s.WeightTo)
}

// Match returns the identifiers of all specs the cargo fits into, in the order
// the specs were given.
func Match(specs []Spec, kilograms int64, size int) []ID {
	var ids []ID
	for _, s := range specs {
		if s.Fits(kilograms, size) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// ErrNoMatch is used when no specification satisfies the weight and size of a
// cargo. Callers treat it as an empty result rather than a failure.
var ErrNoMatch = errors.New("no container matches cargo")

// Repository provides access to container specifications.
type Repository interface {
	FindAll(ctx context.Context) ([]Spec, error)
}
