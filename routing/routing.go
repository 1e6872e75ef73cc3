// Package routing provides the seam between the calculation and the sources
// of routes: the internal trade-lane data and external carriers.
package routing

import (
	"context"
	"time"

	"github.com/Qalifah/freight/itinerary"
	"github.com/Qalifah/freight/location"
)

// RouteSpecification describes what a route must satisfy. Origin and
// Destination are point identifiers in the namespace of the source asked.
type RouteSpecification struct {
	Date        time.Time
	Origin      string
	Destination string
	// Weight of the cargo in kilograms.
	Weight int64
	// Size is the nominal container size, e.g. 20 or 40.
	Size int
	Lang location.Lang
}

// Point is an entry of a departure or destination listing.
type Point struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Company string `json:"company"`
}

// Service provides access to a source of routes.
type Service interface {
	// FetchRoutesForSpecification finds all possible routes that satisfy a
	// given specification.
	FetchRoutesForSpecification(ctx context.Context, rs RouteSpecification) ([]itinerary.Itinerary, error)

	// Departures lists the points routes leave from on date.
	Departures(ctx context.Context, date time.Time, lang location.Lang) ([]Point, error)

	// Destinations lists the points routes leaving from may reach on date.
	Destinations(ctx context.Context, date time.Time, from string, lang location.Lang) ([]Point, error)
}
