package calculating

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/routing"
)

type instrumentingService struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	itineraries    metrics.Histogram
	Service
}

// NewInstrumentingService returns an instance of an instrumenting Service.
func NewInstrumentingService(counter metrics.Counter, latency, itineraries metrics.Histogram, s Service) Service {
	return &instrumentingService{
		requestCount:   counter,
		requestLatency: latency,
		itineraries:    itineraries,
		Service:        s,
	}
}

func (s *instrumentingService) observe(method string, begin time.Time) {
	s.requestCount.With("method", method).Add(1)
	s.requestLatency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (s *instrumentingService) Calculate(ctx context.Context, req Request) (Result, error) {
	defer s.observe("calculate", time.Now())
	res, err := s.Service.Calculate(ctx, req)
	if err == nil {
		s.itineraries.With("bucket", "single").Observe(float64(len(res.SingleVendor)))
		s.itineraries.With("bucket", "multi").Observe(float64(len(res.MultiVendor)))
	}
	return res, err
}

func (s *instrumentingService) Rates(ctx context.Context, date time.Time) (*money.Snapshot, error) {
	defer s.observe("rates", time.Now())
	return s.Service.Rates(ctx, date)
}

func (s *instrumentingService) Departures(ctx context.Context, date time.Time, lang location.Lang) (map[string][]routing.Point, error) {
	defer s.observe("departures", time.Now())
	return s.Service.Departures(ctx, date, lang)
}

func (s *instrumentingService) Destinations(ctx context.Context, date time.Time, source, from string, lang location.Lang) ([]routing.Point, error) {
	defer s.observe("destinations", time.Now())
	return s.Service.Destinations(ctx, date, source, from, lang)
}
