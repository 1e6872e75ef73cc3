// Package provider adapts the FESCO quoting API to a route source: it selects
// the carrier's container tables fit for a cargo, asks for quotes on each of
// them concurrently and normalizes the answers into itineraries.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/Qalifah/freight/fanout"
	"github.com/Qalifah/freight/itinerary"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/routing"
)

// ErrUnavailable is used when the carrier API can't be reached or answers
// with something other than data.
var ErrUnavailable = errors.New("provider unavailable")

type service struct {
	name   string
	client *Client
	logger log.Logger
}

// NewService returns a routing.Service backed by the carrier API, reporting
// itineraries under the given source name.
func NewService(name string, client *Client, logger log.Logger) routing.Service {
	return &service{name: name, client: client, logger: log.With(logger, "source", name)}
}

// FetchRoutesForSpecification never fails on the carrier's account: a failed
// listing yields no routes and a failed quote drops only the container table
// it was asked for.
func (s *service) FetchRoutesForSpecification(ctx context.Context, rs routing.RouteSpecification) ([]itinerary.Itinerary, error) {
	tables, err := s.client.Listing(ctx, rs.Date, rs.Origin, rs.Destination, rs.Lang)
	if err != nil {
		level.Warn(s.logger).Log("call", "listing", "err", err)
		return nil, nil
	}
	codes := Match(tables, rs.Weight, rs.Size)
	if len(codes) == 0 {
		level.Debug(s.logger).Log("msg", "no container table fits", "weight", rs.Weight, "size", rs.Size)
		return nil, nil
	}

	tasks := make([]fanout.Task[[]Route], 0, len(codes))
	for _, c := range codes {
		c := c
		tasks = append(tasks, fanout.Task[[]Route]{
			Name: "quote " + string(c),
			Run: func(ctx context.Context) ([]Route, error) {
				return s.client.Quote(ctx, rs.Date, rs.Origin, rs.Destination, string(c), rs.Lang)
			},
		})
	}

	var its []itinerary.Itinerary
	for _, routes := range fanout.Successes(s.logger, fanout.Run(ctx, tasks...)) {
		for _, r := range routes {
			it, err := toItinerary(s.name, r, rs.Date)
			if err != nil {
				level.Warn(s.logger).Log("msg", "skipping route", "err", err)
				continue
			}
			its = append(its, it)
		}
	}
	return its, nil
}

func (s *service) Departures(ctx context.Context, date time.Time, lang location.Lang) ([]routing.Point, error) {
	ps, err := s.client.Departures(ctx, date, lang)
	if err != nil {
		return nil, err
	}
	return toPoints(ps), nil
}

func (s *service) Destinations(ctx context.Context, date time.Time, from string, lang location.Lang) ([]routing.Point, error) {
	ps, err := s.client.Destinations(ctx, date, from, lang)
	if err != nil {
		return nil, err
	}
	return toPoints(ps), nil
}

func toPoints(ps []Point) []routing.Point {
	out := make([]routing.Point, 0, len(ps))
	for _, p := range ps {
		out = append(out, routing.Point{
			ID:      string(p.ID),
			Name:    p.Name,
			Country: p.Country,
			Company: Carrier,
		})
	}
	return out
}
