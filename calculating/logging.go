package calculating

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/routing"
)

type loggingService struct {
	logger log.Logger
	Service
}

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{logger, s}
}

func (s *loggingService) Calculate(ctx context.Context, req Request) (res Result, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "calculate",
			"id", res.ID,
			"dispatch_date", req.DispatchDate.Format("2006-01-02"),
			"departures", len(req.Departures),
			"weight", req.CargoWeight,
			"size", req.ContainerSize,
			"currency", req.Currency,
			"single", len(res.SingleVendor),
			"multi", len(res.MultiVendor),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.Calculate(ctx, req)
}

func (s *loggingService) Rates(ctx context.Context, date time.Time) (snap *money.Snapshot, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "rates",
			"date", date.Format("2006-01-02"),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.Rates(ctx, date)
}

func (s *loggingService) Departures(ctx context.Context, date time.Time, lang location.Lang) (ps map[string][]routing.Point, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "departures",
			"date", date.Format("2006-01-02"),
			"sources", len(ps),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.Departures(ctx, date, lang)
}

func (s *loggingService) Destinations(ctx context.Context, date time.Time, source, from string, lang location.Lang) (ps []routing.Point, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "destinations",
			"date", date.Format("2006-01-02"),
			"source", source,
			"from", from,
			"points", len(ps),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.Destinations(ctx, date, source, from, lang)
}
