package routing

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qalifah/freight/inmem"
	"github.com/Qalifah/freight/itinerary"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/pathfinder"
)

var june10 = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func newInternal() Service {
	locations, containers, lanes := inmem.Sample()
	return NewInternalService("custom", locations, containers, lanes, pathfinder.New(lanes), log.NewNopLogger())
}

func spec(origin, destination string, weight int64) RouteSpecification {
	return RouteSpecification{
		Date:        june10,
		Origin:      origin,
		Destination: destination,
		Weight:      weight,
		Size:        20,
		Lang:        location.RU,
	}
}

func TestFetchRoutesForSpecification(t *testing.T) {
	its, err := newInternal().FetchRoutesForSpecification(context.Background(), spec("6", "82", 20000))
	require.NoError(t, err)
	require.Len(t, its, 3)

	for _, it := range its {
		assert.NoError(t, it.Validate())
		assert.Equal(t, "custom", it.Source)
	}

	direct := its[0]
	require.Len(t, direct.Segments, 1)
	assert.Equal(t, itinerary.Rail, direct.Segments[0].Mode)
	assert.Equal(t, "Шанхай", direct.Segments[0].Start.Name)
	assert.Equal(t, "Китай", direct.Segments[0].Start.Country)
	assert.Equal(t, "Москва", direct.Segments[0].End.Name)
	assert.Empty(t, direct.Segments[0].Services)
	assert.Nil(t, direct.Drop)

	full := its[1]
	require.Len(t, full.Segments, 2)
	sea, rail := full.Segments[0], full.Segments[1]
	assert.Equal(t, itinerary.Sea, sea.Mode)
	assert.Equal(t, "FI", sea.BeginCond)
	assert.Equal(t, "LO", sea.FinishCond)
	assert.True(t, decimal.NewFromInt(1200).Equal(sea.Amount))
	assert.Equal(t, money.USD, sea.Currency)
	assert.Equal(t, "Sinokor", sea.Carrier)
	assert.Equal(t, "20'DC 0-24t", sea.Container.Name)

	assert.Equal(t, money.RUB, rail.Currency)
	require.Contains(t, rail.Services, "guard")
	require.Contains(t, rail.Services, "drop")
	assert.Equal(t, money.USD, rail.Services["drop"].Currency)
	require.NotNil(t, full.Drop)
	assert.Equal(t, "full", full.Drop.Tier)
	assert.True(t, decimal.NewFromInt(150).Equal(full.Drop.Amount))
	assert.False(t, full.IsSingleCarrier())

	partial := its[2]
	require.NotNil(t, partial.Drop)
	assert.Equal(t, "rail", partial.Drop.Tier)
	assert.Equal(t, "FOR", partial.Segments[0].FinishCond)
}

func TestFetchRoutesUnknownPoint(t *testing.T) {
	_, err := newInternal().FetchRoutesForSpecification(context.Background(), spec("999", "82", 20000))
	assert.ErrorIs(t, err, location.ErrUnknown)

	_, err = newInternal().FetchRoutesForSpecification(context.Background(), spec("6", "moscow", 20000))
	assert.ErrorIs(t, err, location.ErrInvalidID)
}

func TestFetchRoutesNoContainerMatch(t *testing.T) {
	its, err := newInternal().FetchRoutesForSpecification(context.Background(), spec("6", "82", 50000))
	require.NoError(t, err)
	assert.Empty(t, its)
}

func TestFetchRoutesIdempotent(t *testing.T) {
	s := newInternal()
	keys := func() []itinerary.Key {
		its, err := s.FetchRoutesForSpecification(context.Background(), spec("6", "82", 20000))
		require.NoError(t, err)
		var ks []itinerary.Key
		for _, it := range its {
			ks = append(ks, it.Key())
		}
		return ks
	}
	assert.Equal(t, keys(), keys())
}

func TestInternalPoints(t *testing.T) {
	s := newInternal()

	deps, err := s.Departures(context.Background(), june10, location.EN)
	require.NoError(t, err)
	assert.Contains(t, deps, Point{ID: "6", Name: "Shanghai", Country: "China", Company: "Sinokor"})

	dests, err := s.Destinations(context.Background(), june10, "6", location.EN)
	require.NoError(t, err)
	assert.Contains(t, dests, Point{ID: "82", Name: "Moscow", Country: "Russia", Company: "TransContainer"})
}

func TestTrailingRail(t *testing.T) {
	sea := lane.Leg{Tariff: lane.SeaTariff{}}
	rail := lane.Leg{Tariff: lane.RailTariff{}}

	assert.Equal(t, 1, trailingRail([]lane.Leg{sea, rail}))
	assert.Equal(t, 2, trailingRail([]lane.Leg{rail, sea, rail}))
	assert.Equal(t, 2, trailingRail([]lane.Leg{rail, sea}))
	assert.Equal(t, 1, trailingRail([]lane.Leg{rail}))
	assert.Equal(t, 1, trailingRail([]lane.Leg{sea}))
}

func TestMapperRejectsBrokenChain(t *testing.T) {
	m := mapper{source: "custom"}
	_, err := m.itinerary(context.Background(), pathfinder.Chain{})
	assert.ErrorIs(t, err, pathfinder.ErrBrokenChain)
}
