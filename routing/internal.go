package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/itinerary"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/pathfinder"
)

type internalService struct {
	name       string
	locations  location.Repository
	containers container.Repository
	lanes      lane.Repository
	finder     *pathfinder.Finder
	logger     log.Logger
}

// NewInternalService returns a Service over the internal trade-lane data,
// reporting itineraries under the given source name.
func NewInternalService(name string, locations location.Repository, containers container.Repository, lanes lane.Repository, finder *pathfinder.Finder, logger log.Logger) Service {
	return &internalService{
		name:       name,
		locations:  locations,
		containers: containers,
		lanes:      lanes,
		finder:     finder,
		logger:     log.With(logger, "source", name),
	}
}

func (s *internalService) FetchRoutesForSpecification(ctx context.Context, rs RouteSpecification) ([]itinerary.Itinerary, error) {
	origin, err := location.ParseID(rs.Origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, rs.Origin)
	}
	destination, err := location.ParseID(rs.Destination)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, rs.Destination)
	}

	r := location.NewResolver(s.locations, rs.Lang)
	for _, id := range []location.ID{origin, destination} {
		if _, err := r.Resolve(ctx, id); err != nil {
			return nil, err
		}
	}

	specs, err := s.containers.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := container.Match(specs, rs.Weight, rs.Size)
	if len(ids) == 0 {
		level.Debug(s.logger).Log("err", container.ErrNoMatch, "weight", rs.Weight, "size", rs.Size)
		return nil, nil
	}

	chains, err := s.finder.Find(ctx, pathfinder.Query{
		Start:      origin,
		End:        destination,
		Date:       rs.Date,
		Containers: ids,
	})
	if err != nil {
		return nil, err
	}

	m := mapper{source: s.name, resolver: r}
	its := make([]itinerary.Itinerary, 0, len(chains))
	for _, c := range chains {
		it, err := m.itinerary(ctx, c)
		if err != nil {
			level.Warn(s.logger).Log("chain", c.Key(), "err", err)
			continue
		}
		its = append(its, it)
	}
	return its, nil
}

func (s *internalService) Departures(ctx context.Context, date time.Time, lang location.Lang) ([]Point, error) {
	return s.terminals(ctx, lane.Departure, date, lang)
}

// Destinations lists every point a leg valid on date arrives at. The internal
// listing is not narrowed by the departure point.
func (s *internalService) Destinations(ctx context.Context, date time.Time, _ string, lang location.Lang) ([]Point, error) {
	return s.terminals(ctx, lane.Destination, date, lang)
}

func (s *internalService) terminals(ctx context.Context, side lane.Side, date time.Time, lang location.Lang) ([]Point, error) {
	ts, err := s.lanes.Terminals(ctx, side, date)
	if err != nil {
		return nil, err
	}
	r := location.NewResolver(s.locations, lang)
	ps := make([]Point, 0, len(ts))
	for _, t := range ts {
		place, err := r.Resolve(ctx, t.Point)
		if errors.Is(err, location.ErrUnknown) {
			level.Warn(s.logger).Log("point", t.Point, "err", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		ps = append(ps, Point{
			ID:      place.ID.String(),
			Name:    place.Name,
			Country: place.Country,
			Company: t.Carrier,
		})
	}
	return ps, nil
}
