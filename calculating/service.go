// Package calculating provides the use-case of pricing a shipment: it asks
// every route source named in a request for itineraries, merges and
// deduplicates them, converts their prices into one currency and splits them
// into single and multi carrier routes.
package calculating

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/fanout"
	"github.com/Qalifah/freight/itinerary"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/routing"
)

// ErrInvalidArgument is returned when one or more arguments are invalid.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrUnknownService is returned when a listing names a source that does not
// exist.
var ErrUnknownService = errors.New("unknown service")

// Request is a calculation request. Departures and Destinations map a source
// name to a point identifier in that source's namespace; a source is asked
// only when it appears in both.
type Request struct {
	DispatchDate time.Time
	Departures   map[string]string
	Destinations map[string]string
	// CargoWeight in kilograms.
	CargoWeight   int64
	ContainerSize int
	Currency      money.Currency
	Lang          location.Lang
}

// Result holds the deduplicated itineraries of a calculation.
type Result struct {
	ID           string                `json:"id"`
	SingleVendor []itinerary.Itinerary `json:"one_service_routes"`
	MultiVendor  []itinerary.Itinerary `json:"multi_service_routes"`
}

// Service is the interface that provides the calculation methods.
type Service interface {
	// Calculate finds and prices every itinerary satisfying the request.
	Calculate(ctx context.Context, req Request) (Result, error)

	// Rates returns the exchange rate table of date, or of today when date is
	// zero.
	Rates(ctx context.Context, date time.Time) (*money.Snapshot, error)

	// Departures lists the departure points of every source.
	Departures(ctx context.Context, date time.Time, lang location.Lang) (map[string][]routing.Point, error)

	// Destinations lists the points one source reaches from a departure point.
	Destinations(ctx context.Context, date time.Time, source, from string, lang location.Lang) ([]routing.Point, error)
}

type service struct {
	internalName string
	internal     routing.Service
	providers    map[string]routing.Service
	rates        *money.Cache
	markup       decimal.Decimal
	logger       log.Logger
	now          func() time.Time
}

// NewService creates a calculating service. Request keys naming one of the
// providers (case insensitive) are sent to that provider; every other key is
// answered from the internal trade-lane data.
func NewService(internalName string, internal routing.Service, providers map[string]routing.Service, rates *money.Cache, markupPercent decimal.Decimal, logger log.Logger) Service {
	ps := make(map[string]routing.Service, len(providers))
	for name, p := range providers {
		ps[strings.ToLower(name)] = p
	}
	return &service{
		internalName: internalName,
		internal:     internal,
		providers:    ps,
		rates:        rates,
		markup:       markupPercent,
		logger:       logger,
		now:          time.Now,
	}
}

// dispatch is one source asked during a calculation.
type dispatch struct {
	name     string
	svc      routing.Service
	from, to string
	external bool
}

// plan lists the sources to ask in merge order: providers first, then the
// internal sources, each group by name.
func (s *service) plan(req Request) []dispatch {
	var ds []dispatch
	for name, to := range req.Destinations {
		from, ok := req.Departures[name]
		if !ok {
			continue
		}
		d := dispatch{name: name, svc: s.internal, from: from, to: to}
		if p, ok := s.providers[strings.ToLower(name)]; ok {
			d.svc, d.external = p, true
		}
		ds = append(ds, d)
	}
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].external != ds[j].external {
			return ds[i].external
		}
		return ds[i].name < ds[j].name
	})
	return ds
}

func (s *service) Calculate(ctx context.Context, req Request) (Result, error) {
	if req.CargoWeight <= 0 || req.ContainerSize <= 0 {
		return Result{}, fmt.Errorf("%w: cargo weight and container size must be positive", ErrInvalidArgument)
	}
	target := req.Currency.Normalize()
	if target == "" {
		return Result{}, fmt.Errorf("%w: currency is required", ErrInvalidArgument)
	}
	ds := s.plan(req)
	if len(ds) == 0 {
		return Result{}, fmt.Errorf("%w: no service has both a departure and a destination", ErrInvalidArgument)
	}
	date := req.DispatchDate
	if date.IsZero() {
		date = s.now()
	}

	tasks := make([]fanout.Task[[]itinerary.Itinerary], 0, len(ds))
	for _, d := range ds {
		d := d
		tasks = append(tasks, fanout.Task[[]itinerary.Itinerary]{
			Name: d.name,
			Run: func(ctx context.Context) ([]itinerary.Itinerary, error) {
				its, err := d.svc.FetchRoutesForSpecification(ctx, routing.RouteSpecification{
					Date:        date,
					Origin:      d.from,
					Destination: d.to,
					Weight:      req.CargoWeight,
					Size:        req.ContainerSize,
					Lang:        req.Lang,
				})
				for i := range its {
					its[i].Source = d.name
				}
				return its, err
			},
		})
	}
	results := fanout.Run(ctx, tasks...)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	for _, r := range results {
		if errors.Is(r.Err, location.ErrUnknown) || errors.Is(r.Err, location.ErrInvalidID) {
			return Result{}, fmt.Errorf("%s: %w", r.Name, r.Err)
		}
	}

	merged := dedup(fanout.Successes(s.logger, results))
	merged, err := s.convert(ctx, merged, target, date)
	if err != nil {
		return Result{}, err
	}
	return classify(uuid.New(), merged), nil
}

// dedup flattens the itinerary lists in order, keeping the first itinerary of
// every key.
func dedup(lists [][]itinerary.Itinerary) []itinerary.Itinerary {
	seen := make(map[itinerary.Key]bool)
	var out []itinerary.Itinerary
	for _, its := range lists {
		for _, it := range its {
			k := it.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, it)
		}
	}
	return out
}

// convert reprices the itineraries in the target currency with the rates of
// date. Itineraries priced in a currency missing from the rate table are
// dropped. When no rates can be fetched the itineraries keep their own
// currencies.
func (s *service) convert(ctx context.Context, its []itinerary.Itinerary, target money.Currency, date time.Time) ([]itinerary.Itinerary, error) {
	snap, err := s.rates.GetOrFetch(ctx, date)
	if err != nil {
		level.Error(s.logger).Log("msg", "exchange rates unavailable, keeping native currencies", "err", err)
		return its, nil
	}
	if !snap.Rates.Has(target) {
		return nil, fmt.Errorf("%w: %s", money.ErrUnknownCurrency, target)
	}
	conv := money.NewConverter(snap.Rates, s.markup)
	out := its[:0]
	for i := range its {
		it := its[i]
		prices := it.Prices()
		if err := conv.ConvertTree(prices, target); err != nil {
			level.Warn(s.logger).Log("msg", "dropping itinerary", "key", it.Key(), "err", err)
			continue
		}
		_ = money.Walk(prices, func(p *money.Price) error {
			p.Amount = p.Amount.Round(2)
			return nil
		})
		out = append(out, it)
	}
	return out, nil
}

func classify(id string, its []itinerary.Itinerary) Result {
	r := Result{
		ID:           id,
		SingleVendor: []itinerary.Itinerary{},
		MultiVendor:  []itinerary.Itinerary{},
	}
	for _, it := range its {
		if it.IsSingleCarrier() {
			r.SingleVendor = append(r.SingleVendor, it)
		} else {
			r.MultiVendor = append(r.MultiVendor, it)
		}
	}
	return r
}

func (s *service) Rates(ctx context.Context, date time.Time) (*money.Snapshot, error) {
	return s.rates.GetOrFetch(ctx, date)
}

func (s *service) Departures(ctx context.Context, date time.Time, lang location.Lang) (map[string][]routing.Point, error) {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	tasks := []fanout.Task[[]routing.Point]{{
		Name: s.internalName,
		Run: func(ctx context.Context) ([]routing.Point, error) {
			return s.internal.Departures(ctx, date, lang)
		},
	}}
	for _, name := range names {
		p := s.providers[name]
		tasks = append(tasks, fanout.Task[[]routing.Point]{
			Name: name,
			Run: func(ctx context.Context) ([]routing.Point, error) {
				return p.Departures(ctx, date, lang)
			},
		})
	}

	out := make(map[string][]routing.Point, len(tasks))
	for _, r := range fanout.Run(ctx, tasks...) {
		if r.Err != nil {
			level.Warn(s.logger).Log("source", r.Name, "err", r.Err)
			continue
		}
		out[r.Name] = r.Value
	}
	return out, ctx.Err()
}

func (s *service) Destinations(ctx context.Context, date time.Time, source, from string, lang location.Lang) ([]routing.Point, error) {
	if from == "" {
		return nil, fmt.Errorf("%w: departure point is required", ErrInvalidArgument)
	}
	if strings.EqualFold(source, s.internalName) {
		return s.internal.Destinations(ctx, date, from, lang)
	}
	if p, ok := s.providers[strings.ToLower(source)]; ok {
		return p.Destinations(ctx, date, from, lang)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownService, source)
}
