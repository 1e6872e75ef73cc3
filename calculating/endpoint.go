package calculating

import (
	"context"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/tracing/opentracing"
	"github.com/go-kit/kit/tracing/zipkin"
	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/routing"
)

type calculateRequest struct {
	Request Request
}

type calculateResponse struct {
	*Result
	Err error `json:"error,omitempty"`
}

func (r calculateResponse) error() error { return r.Err }

func makeCalculateEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(calculateRequest)
		res, err := s.Calculate(ctx, req.Request)
		if err != nil {
			return calculateResponse{Err: err}, nil
		}
		return calculateResponse{Result: &res}, nil
	}
}

type ratesRequest struct {
	Date time.Time
}

type ratesResponse struct {
	Date  string      `json:"date,omitempty"`
	Rates money.Rates `json:"rates,omitempty"`
	Err   error       `json:"error,omitempty"`
}

func (r ratesResponse) error() error { return r.Err }

func makeRatesEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ratesRequest)
		snap, err := s.Rates(ctx, req.Date)
		if err != nil {
			return ratesResponse{Err: err}, nil
		}
		return ratesResponse{Date: snap.Date.Format(dateLayout), Rates: snap.Rates}, nil
	}
}

type departuresRequest struct {
	Date time.Time
	Lang location.Lang
}

type departuresResponse struct {
	Points map[string][]routing.Point `json:"points,omitempty"`
	Err    error                      `json:"error,omitempty"`
}

func (r departuresResponse) error() error { return r.Err }

func makeDeparturesEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(departuresRequest)
		ps, err := s.Departures(ctx, req.Date, req.Lang)
		return departuresResponse{Points: ps, Err: err}, nil
	}
}

type destinationsRequest struct {
	Date    time.Time
	Service string
	From    string
	Lang    location.Lang
}

type destinationsResponse struct {
	Points []routing.Point `json:"points"`
	Err    error           `json:"error,omitempty"`
}

func (r destinationsResponse) error() error { return r.Err }

func makeDestinationsEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(destinationsRequest)
		ps, err := s.Destinations(ctx, req.Date, req.Service, req.From, req.Lang)
		if ps == nil {
			ps = []routing.Point{}
		}
		return destinationsResponse{Points: ps, Err: err}, nil
	}
}

// Set collects all of the endpoints that compose a calculating service.
type Set struct {
	CalculateEndpoint    endpoint.Endpoint
	RatesEndpoint        endpoint.Endpoint
	DeparturesEndpoint   endpoint.Endpoint
	DestinationsEndpoint endpoint.Endpoint
}

// NewSet returns a Set that wraps the provided server, and wires in all of the
// expected endpoint middlewares via the various parameters.
func NewSet(svc Service, otTracer stdopentracing.Tracer, zipkinTracer *stdzipkin.Tracer) Set {
	if otTracer == nil {
		otTracer = stdopentracing.NoopTracer{}
	}
	wrap := func(e endpoint.Endpoint, name string) endpoint.Endpoint {
		e = ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Limit(100), 100))(e)
		e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: name}))(e)
		e = opentracing.TraceServer(otTracer, name)(e)
		if zipkinTracer != nil {
			e = zipkin.TraceEndpoint(zipkinTracer, name)(e)
		}
		return e
	}
	return Set{
		CalculateEndpoint:    wrap(makeCalculateEndpoint(svc), "Calculate"),
		RatesEndpoint:        wrap(makeRatesEndpoint(svc), "Rates"),
		DeparturesEndpoint:   wrap(makeDeparturesEndpoint(svc), "Departures"),
		DestinationsEndpoint: wrap(makeDestinationsEndpoint(svc), "Destinations"),
	}
}
