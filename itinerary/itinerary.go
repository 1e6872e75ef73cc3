// Package itinerary is the canonical, source independent form of a shippable
// path: the shape every route source is normalized into before results are
// merged, priced and returned.
package itinerary

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
)

// Mode is the transport mode of a segment.
type Mode string

// Segment modes.
const (
	Sea   Mode = "sea"
	Rail  Mode = "rail"
	Truck Mode = "truck"
)

// Segment describes the transportation between two places by one carrier.
type Segment struct {
	Carrier       string                  `json:"company"`
	Mode          Mode                    `json:"type"`
	EffectiveFrom time.Time               `json:"effectiveFrom"`
	EffectiveTo   time.Time               `json:"effectiveTo"`
	Start         location.Place          `json:"start"`
	End           location.Place          `json:"end"`
	Container     *container.Spec         `json:"container,omitempty"`
	Services      map[string]*money.Price `json:"services"`
	BeginCond     string                  `json:"beginCond,omitempty"`
	FinishCond    string                  `json:"finishCond,omitempty"`
	money.Price

	// Identity of the carrier and the end points within the source that
	// produced the segment.
	CarrierKey string `json:"-"`
	StartKey   string `json:"-"`
	EndKey     string `json:"-"`
}

// Drop is the drop fee attached to an itinerary.
type Drop struct {
	money.Price
	Tier string `json:"tier"`
}

// Itinerary specifies the steps required to move a container from its origin
// to its destination.
type Itinerary struct {
	Source        string    `json:"source"`
	Segments      []Segment `json:"segments"`
	Drop          *Drop     `json:"drop,omitempty"`
	PossiblyStale bool      `json:"mayBeInvalid"`
}

// IsEmpty checks if the itinerary contains at least one segment.
func (i Itinerary) IsEmpty() bool {
	return len(i.Segments) == 0
}

// Key identifies an itinerary for deduplication: the ordered carrier, start
// and end of its segments. The drop fee is not part of it.
type Key string

// Key returns the deduplication key.
func (i Itinerary) Key() Key {
	parts := make([]string, len(i.Segments))
	for n, s := range i.Segments {
		parts[n] = s.CarrierKey + "|" + s.StartKey + "|" + s.EndKey
	}
	return Key(strings.Join(parts, ";"))
}

// IsSingleCarrier reports whether every segment shares one carrier.
func (i Itinerary) IsSingleCarrier() bool {
	for _, s := range i.Segments[1:] {
		if s.CarrierKey != i.Segments[0].CarrierKey {
			return false
		}
	}
	return true
}

// ErrInvalidShape is used when an itinerary breaks its structural invariants.
// Sources never build such itineraries; it signals a defect.
var ErrInvalidShape = errors.New("invalid itinerary shape")

// Validate checks that the itinerary is non-empty, that every segment starts
// where the previous one ended and that all segments carry one container.
func (i Itinerary) Validate() error {
	if i.IsEmpty() {
		return fmt.Errorf("%w: no segments", ErrInvalidShape)
	}
	var spec *container.Spec
	for n, s := range i.Segments {
		if n > 0 && i.Segments[n-1].EndKey != s.StartKey {
			return fmt.Errorf("%w: segment %d starts at %s, previous ends at %s",
				ErrInvalidShape, n, s.StartKey, i.Segments[n-1].EndKey)
		}
		if s.Container == nil {
			continue
		}
		if spec != nil && spec.ID != s.Container.ID {
			return fmt.Errorf("%w: segment %d carries container %d, expected %d",
				ErrInvalidShape, n, s.Container.ID, spec.ID)
		}
		spec = s.Container
	}
	return nil
}

// Prices exposes every price of the itinerary as a tree whose leaves point
// into the itinerary, so converting the tree reprices the itinerary.
func (i *Itinerary) Prices() money.Node {
	segments := make(money.List, len(i.Segments))
	for n := range i.Segments {
		s := &i.Segments[n]
		services := make(money.Map, len(s.Services))
		for name, p := range s.Services {
			services[name] = money.Leaf{Price: p}
		}
		segments[n] = money.Map{
			"price":    money.Leaf{Price: &s.Price},
			"services": services,
		}
	}
	tree := money.Map{"segments": segments}
	if i.Drop != nil {
		tree["drop"] = money.Leaf{Price: &i.Drop.Price}
	}
	return tree
}
