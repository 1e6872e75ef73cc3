package calculating

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qalifah/freight/inmem"
	"github.com/Qalifah/freight/itinerary"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/pathfinder"
	"github.com/Qalifah/freight/routing"
)

var june10 = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

type stubSource struct {
	its    []itinerary.Itinerary
	err    error
	points []routing.Point
	asked  []routing.RouteSpecification
}

func (s *stubSource) FetchRoutesForSpecification(_ context.Context, rs routing.RouteSpecification) ([]itinerary.Itinerary, error) {
	s.asked = append(s.asked, rs)
	out := make([]itinerary.Itinerary, len(s.its))
	for i, it := range s.its {
		out[i] = copyItinerary(it)
	}
	return out, s.err
}

func (s *stubSource) Departures(context.Context, time.Time, location.Lang) ([]routing.Point, error) {
	return s.points, s.err
}

func (s *stubSource) Destinations(context.Context, time.Time, string, location.Lang) ([]routing.Point, error) {
	return s.points, s.err
}

func copyItinerary(it itinerary.Itinerary) itinerary.Itinerary {
	it.Segments = append([]itinerary.Segment(nil), it.Segments...)
	return it
}

func seaQuote(from, to string, usd int64) itinerary.Itinerary {
	return itinerary.Itinerary{Segments: []itinerary.Segment{{
		Carrier:    "FESCO",
		Mode:       itinerary.Sea,
		Start:      location.Place{Name: from},
		End:        location.Place{Name: to},
		Services:   map[string]*money.Price{},
		Price:      money.NewPrice(decimal.NewFromInt(usd), money.USD),
		CarrierKey: "FESCO",
		StartKey:   from,
		EndKey:     to,
	}}}
}

func rates(r money.Rates, err error) *money.Cache {
	return money.NewCache(money.SourceFunc(func(context.Context, time.Time) (money.Rates, error) {
		return r, err
	}))
}

var sampleRates = money.Rates{money.USD: decimal.NewFromInt(90), money.CNY: decimal.NewFromInt(12)}

func newTestService(fesco routing.Service, cache *money.Cache, markup int64) Service {
	locations, containers, lanes := inmem.Sample()
	internal := routing.NewInternalService("custom", locations, containers, lanes, pathfinder.New(lanes), log.NewNopLogger())
	return NewService("custom", internal, map[string]routing.Service{"FESCO": fesco}, cache, decimal.NewFromInt(markup), log.NewNopLogger())
}

func request() Request {
	return Request{
		DispatchDate:  june10,
		Departures:    map[string]string{"custom": "6", "FESCO": "CNSHA"},
		Destinations:  map[string]string{"custom": "82", "FESCO": "RUMOW"},
		CargoWeight:   20000,
		ContainerSize: 20,
		Currency:      money.RUB,
		Lang:          location.RU,
	}
}

func TestCalculate(t *testing.T) {
	fesco := &stubSource{its: []itinerary.Itinerary{seaQuote("Shanghai", "Vladivostok", 1000)}}
	s := newTestService(fesco, rates(sampleRates, nil), 0)

	res, err := s.Calculate(context.Background(), request())
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)

	require.Len(t, fesco.asked, 1)
	assert.Equal(t, "CNSHA", fesco.asked[0].Origin)
	assert.Equal(t, int64(20000), fesco.asked[0].Weight)

	require.Len(t, res.SingleVendor, 2)
	assert.Equal(t, "FESCO", res.SingleVendor[0].Source)
	assert.True(t, decimal.NewFromInt(90000).Equal(res.SingleVendor[0].Segments[0].Amount))
	assert.Equal(t, money.RUB, res.SingleVendor[0].Segments[0].Currency)
	assert.Equal(t, "custom", res.SingleVendor[1].Source)
	assert.Equal(t, itinerary.Rail, res.SingleVendor[1].Segments[0].Mode)

	require.Len(t, res.MultiVendor, 2)
	full := res.MultiVendor[0]
	assert.True(t, decimal.NewFromInt(108000).Equal(full.Segments[0].Amount))
	require.NotNil(t, full.Drop)
	assert.True(t, decimal.NewFromInt(13500).Equal(full.Drop.Amount))
	assert.Equal(t, money.RUB, full.Drop.Currency)
	assert.True(t, decimal.NewFromInt(27000).Equal(full.Segments[1].Services["drop"].Amount))

	for _, bucket := range [][]itinerary.Itinerary{res.SingleVendor, res.MultiVendor} {
		for _, it := range bucket {
			assert.NoError(t, it.Validate())
		}
	}
}

func TestCalculateMarkup(t *testing.T) {
	s := newTestService(&stubSource{its: []itinerary.Itinerary{seaQuote("A", "B", 100)}}, rates(sampleRates, nil), 5)
	req := request()
	delete(req.Departures, "custom")

	res, err := s.Calculate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.SingleVendor, 1)
	assert.True(t, decimal.NewFromInt(9450).Equal(res.SingleVendor[0].Segments[0].Amount))
}

func TestCalculateDeduplicates(t *testing.T) {
	fesco := &stubSource{its: []itinerary.Itinerary{
		seaQuote("Shanghai", "Vladivostok", 1000),
		seaQuote("Shanghai", "Vladivostok", 1200),
	}}
	res, err := newTestService(fesco, rates(sampleRates, nil), 0).Calculate(context.Background(), request())
	require.NoError(t, err)

	seen := make(map[itinerary.Key]bool)
	for _, bucket := range [][]itinerary.Itinerary{res.SingleVendor, res.MultiVendor} {
		for _, it := range bucket {
			assert.False(t, seen[it.Key()], "duplicate key %s", it.Key())
			seen[it.Key()] = true
		}
	}
	assert.Len(t, res.SingleVendor, 2)
	assert.True(t, decimal.NewFromInt(90000).Equal(res.SingleVendor[0].Segments[0].Amount))
}

func TestCalculateIsolatesSourceFailure(t *testing.T) {
	fesco := &stubSource{err: errors.New("connection refused")}
	res, err := newTestService(fesco, rates(sampleRates, nil), 0).Calculate(context.Background(), request())
	require.NoError(t, err)
	assert.Len(t, res.SingleVendor, 1)
	assert.Len(t, res.MultiVendor, 2)
}

func TestCalculateUnknownPoint(t *testing.T) {
	req := request()
	req.Destinations["custom"] = "999"
	_, err := newTestService(&stubSource{}, rates(sampleRates, nil), 0).Calculate(context.Background(), req)
	assert.ErrorIs(t, err, location.ErrUnknown)
	assert.Contains(t, err.Error(), "999")
}

func TestCalculateInvalidArguments(t *testing.T) {
	s := newTestService(&stubSource{}, rates(sampleRates, nil), 0)

	req := request()
	req.CargoWeight = 0
	_, err := s.Calculate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	req = request()
	req.Destinations = map[string]string{"other": "82"}
	_, err = s.Calculate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	req = request()
	req.Currency = ""
	_, err = s.Calculate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCalculateUnknownCurrency(t *testing.T) {
	req := request()
	req.Currency = "XYZ"
	_, err := newTestService(&stubSource{}, rates(sampleRates, nil), 0).Calculate(context.Background(), req)
	assert.ErrorIs(t, err, money.ErrUnknownCurrency)
}

func TestCalculateKeepsNativeCurrenciesWithoutRates(t *testing.T) {
	fesco := &stubSource{its: []itinerary.Itinerary{seaQuote("Shanghai", "Vladivostok", 1000)}}
	res, err := newTestService(fesco, rates(nil, errors.New("feed down")), 0).Calculate(context.Background(), request())
	require.NoError(t, err)
	require.NotEmpty(t, res.SingleVendor)
	assert.Equal(t, money.USD, res.SingleVendor[0].Segments[0].Currency)
	assert.True(t, decimal.NewFromInt(1000).Equal(res.SingleVendor[0].Segments[0].Amount))
}

func TestCalculateConvertsWithDispatchDateRates(t *testing.T) {
	var fetched []time.Time
	cache := money.NewCache(money.SourceFunc(func(_ context.Context, date time.Time) (money.Rates, error) {
		fetched = append(fetched, date)
		return sampleRates, nil
	}))
	req := request()
	delete(req.Departures, "custom")

	_, err := newTestService(&stubSource{its: []itinerary.Itinerary{seaQuote("A", "B", 100)}}, cache, 0).Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{june10}, fetched)
}

func TestCalculateNoContainerMatch(t *testing.T) {
	req := request()
	req.CargoWeight = 50000
	delete(req.Departures, "FESCO")
	res, err := newTestService(&stubSource{}, rates(sampleRates, nil), 0).Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, res.SingleVendor)
	assert.Empty(t, res.MultiVendor)
}

func TestCalculateIdempotent(t *testing.T) {
	s := newTestService(&stubSource{its: []itinerary.Itinerary{seaQuote("Shanghai", "Vladivostok", 1000)}}, rates(sampleRates, nil), 0)
	keys := func() []itinerary.Key {
		res, err := s.Calculate(context.Background(), request())
		require.NoError(t, err)
		var ks []itinerary.Key
		for _, it := range append(res.SingleVendor, res.MultiVendor...) {
			ks = append(ks, it.Key())
		}
		return ks
	}
	assert.Equal(t, keys(), keys())
}

func TestPlanOrder(t *testing.T) {
	s := newTestService(&stubSource{}, rates(sampleRates, nil), 0).(*service)
	ds := s.plan(Request{
		Departures:   map[string]string{"zeta": "1", "fesco": "A", "alpha": "2", "lonely": "3"},
		Destinations: map[string]string{"zeta": "4", "fesco": "B", "alpha": "5"},
	})
	var names []string
	for _, d := range ds {
		names = append(names, d.name)
	}
	assert.Equal(t, []string{"fesco", "alpha", "zeta"}, names)
	assert.True(t, ds[0].external)
}

func TestPoints(t *testing.T) {
	fesco := &stubSource{points: []routing.Point{{ID: "CNSHA", Name: "Shanghai", Company: "FESCO"}}}
	s := newTestService(fesco, rates(sampleRates, nil), 0)

	deps, err := s.Departures(context.Background(), june10, location.EN)
	require.NoError(t, err)
	assert.Contains(t, deps, "custom")
	assert.Equal(t, fesco.points, deps["fesco"])

	dests, err := s.Destinations(context.Background(), june10, "FESCO", "CNSHA", location.EN)
	require.NoError(t, err)
	assert.Equal(t, fesco.points, dests)

	_, err = s.Destinations(context.Background(), june10, "nope", "CNSHA", location.EN)
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestRates(t *testing.T) {
	snap, err := newTestService(&stubSource{}, rates(sampleRates, nil), 0).Rates(context.Background(), june10)
	require.NoError(t, err)
	assert.Equal(t, june10, snap.Date)
	assert.True(t, decimal.NewFromInt(90).Equal(snap.Rates[money.USD]))
}
