package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/inmem"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/postgres"
)

var june10 = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

// setup connects to FREIGHT_TEST_DSN, recreates the schema and loads the demo
// data set.
func setup(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("FREIGHT_TEST_DSN")
	if dsn == "" {
		t.Skip("FREIGHT_TEST_DSN not set")
	}
	ctx := context.Background()

	db, err := postgres.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `DROP TABLE IF EXISTS
		drop_fees, rail_routes, sea_routes, containers, companies, point_aliases, points CASCADE`)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, db))

	ds := postgres.Dataset{
		Points:     location.SamplePoints(),
		Containers: inmem.SampleContainers(),
		Legs:       inmem.SampleLegs(),
		DropFees:   inmem.SampleDropFees(),
	}
	require.NoError(t, postgres.Load(ctx, db, ds))
	// Loading twice leaves the data unchanged.
	require.NoError(t, postgres.Load(ctx, db, ds))
	return db
}

func legIDs(legs []lane.Leg) []int64 {
	var ids []int64
	for _, l := range legs {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestLocationRepository(t *testing.T) {
	db := setup(t)
	r := postgres.NewLocationRepository(db)

	p, err := r.Find(context.Background(), location.Moscow.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moscow", p.City)
	assert.Equal(t, "Москва", p.Name(location.RU))
	require.NotNil(t, p.ParentID)
	assert.Equal(t, location.Russia.ID, *p.ParentID)

	_, err = r.Find(context.Background(), 999)
	assert.ErrorIs(t, err, location.ErrUnknown)

	all, err := r.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, len(location.SamplePoints()))
	assert.Equal(t, "Russia", all[0].Name(location.EN))
	assert.Len(t, all[0].Aliases, 2)
}

func TestContainerRepository(t *testing.T) {
	db := setup(t)

	specs, err := postgres.NewContainerRepository(db).FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, specs, 4)
	assert.Equal(t, []container.ID{inmem.DC20Light.ID}, container.Match(specs, 20000, 20))
	assert.Equal(t, []container.ID{inmem.DC20Heavy.ID}, container.Match(specs, 25000, 20))
	assert.Empty(t, container.Match(specs, 28000, 20))
}

func TestLaneRepositoryMatchesInMemory(t *testing.T) {
	db := setup(t)
	pg := postgres.NewLaneRepository(db)
	_, _, mem := inmem.Sample()
	ctx := context.Background()

	filters := []lane.LegFilter{
		{Mode: lane.Sea, From: []location.ID{location.Shanghai.ID}, Date: june10,
			Containers: []container.ID{inmem.DC20Light.ID, inmem.DC20Heavy.ID}},
		{Mode: lane.Rail, From: []location.ID{location.Vladivostok.ID, location.Vostochny.ID},
			To: []location.ID{location.Moscow.ID}, Date: june10, Containers: []container.ID{inmem.DC20Light.ID}},
		{Mode: lane.Rail, To: []location.ID{location.Moscow.ID}, Date: june10,
			Containers: []container.ID{inmem.DC20Light.ID}},
		{Mode: lane.Sea, Date: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			Containers: []container.ID{inmem.DC20Light.ID}},
	}
	for _, f := range filters {
		want, err := mem.FindLegs(ctx, f)
		require.NoError(t, err)
		got, err := pg.FindLegs(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, legIDs(want), legIDs(got), "%s from %v to %v", f.Mode, f.From, f.To)
	}

	for _, tier := range []lane.Tier{lane.Full, lane.RailOnly, lane.SeaOnly} {
		f := lane.DropFilter{Tier: tier, Date: june10, Containers: []container.ID{inmem.DC20Light.ID}}
		want, err := mem.FindDropFees(ctx, f)
		require.NoError(t, err)
		got, err := pg.FindDropFees(ctx, f)
		require.NoError(t, err)
		require.Len(t, got, len(want), tier.String())
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.Equal(t, want[i].Tier(), got[i].Tier())
			assert.True(t, want[i].Price.Equal(got[i].Price))
		}
	}

	for _, side := range []lane.Side{lane.Departure, lane.Destination} {
		want, err := mem.Terminals(ctx, side, june10)
		require.NoError(t, err)
		got, err := pg.Terminals(ctx, side, june10)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLaneRepositoryTariffs(t *testing.T) {
	db := setup(t)
	ctx := context.Background()

	legs, err := postgres.NewLaneRepository(db).FindLegs(ctx, lane.LegFilter{
		Mode:       lane.Rail,
		From:       []location.ID{location.Vladivostok.ID},
		To:         []location.ID{location.Moscow.ID},
		Date:       june10,
		Containers: []container.ID{inmem.DC20Light.ID},
	})
	require.NoError(t, err)
	require.Len(t, legs, 1)

	rail, ok := legs[0].Tariff.(lane.RailTariff)
	require.True(t, ok)
	assert.Equal(t, "180000", rail.Price.String())
	require.NotNil(t, rail.Drop)
	assert.Equal(t, "300", rail.Drop.String())
	require.NotNil(t, rail.Guard)
	assert.Equal(t, "5000", rail.Guard.String())
	assert.EqualValues(t, "RUB", rail.Currency)
	assert.EqualValues(t, "USD", rail.DropCurrency)
	assert.Equal(t, inmem.RZDLogistics, legs[0].Carrier)
	assert.Equal(t, inmem.DC20Light.Name, legs[0].Container.Name)
}

func TestLaneRepositoryNoContainers(t *testing.T) {
	legs, err := postgres.NewLaneRepository(nil).FindLegs(context.Background(), lane.LegFilter{Mode: lane.Sea, Date: june10})
	require.NoError(t, err)
	assert.Empty(t, legs)

	_, err = postgres.NewLaneRepository(nil).FindLegs(context.Background(), lane.LegFilter{Date: june10})
	assert.Error(t, err)
}
