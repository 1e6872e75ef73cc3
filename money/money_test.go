package money

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvertWithMarkup(t *testing.T) {
	rates := Rates{USD: d("90")}
	got, err := rates.Convert(d("100"), USD, RUB, d("5"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("9450")), "got %s", got)
}

func TestConvertRoundTrip(t *testing.T) {
	rates := Rates{USD: d("90.1234"), EUR: d("97.4411"), CNY: d("12.3779")}
	pairs := [][2]Currency{{USD, RUB}, {EUR, USD}, {CNY, EUR}, {RUB, CNY}}
	for _, p := range pairs {
		x := d("1234.56")
		there, err := rates.Convert(x, p[0], p[1], decimal.Zero)
		require.NoError(t, err)
		back, err := rates.Convert(there, p[1], p[0], decimal.Zero)
		require.NoError(t, err)
		assert.InDelta(t, x.InexactFloat64(), back.InexactFloat64(), 1e-9, "%s -> %s", p[0], p[1])
	}
}

func TestReferenceCurrencyIsPinned(t *testing.T) {
	rates := Rates{USD: d("90")}
	r, err := rates.Rate(RUR)
	require.NoError(t, err)
	assert.True(t, r.Equal(decimal.NewFromInt(1)))

	_, err = rates.Rate("XXX")
	assert.True(t, errors.Is(err, ErrUnknownCurrency))
}

type priced struct {
	Main     Price
	Services map[string]*Price
	Extra    []*Price
	Comment  string
}

func TestConvertTreeRewritesEveryLeafInPlace(t *testing.T) {
	guard := Price{Amount: d("900"), Currency: RUB}
	drop := Price{Amount: d("10"), Currency: USD}
	v := priced{
		Main:     Price{Amount: d("100"), Currency: USD},
		Services: map[string]*Price{"guard": &guard},
		Extra:    []*Price{&drop},
		Comment:  "untouched",
	}
	tree := Map{
		"main":     Leaf{&v.Main},
		"services": Map{"guard": Leaf{v.Services["guard"]}},
		"extra":    List{Leaf{v.Extra[0]}, Leaf{nil}},
	}

	c := NewConverter(Rates{USD: d("90")}, decimal.Zero)
	require.NoError(t, c.ConvertTree(tree, RUB))

	assert.Equal(t, RUB, v.Main.Currency)
	assert.True(t, v.Main.Amount.Equal(d("9000")))
	assert.True(t, guard.Amount.Equal(d("900")))
	assert.Equal(t, RUB, drop.Currency)
	assert.True(t, drop.Amount.Equal(d("900")))
	assert.Equal(t, "untouched", v.Comment)
}

func TestConvertTreeUnknownCurrency(t *testing.T) {
	p := Price{Amount: d("1"), Currency: "XXX"}
	c := NewConverter(Rates{}, decimal.Zero)
	err := c.ConvertTree(List{Leaf{&p}}, RUB)
	assert.True(t, errors.Is(err, ErrUnknownCurrency))
}

func TestCacheFetchesOncePerDay(t *testing.T) {
	var calls int32
	src := SourceFunc(func(_ context.Context, date time.Time) (Rates, error) {
		atomic.AddInt32(&calls, 1)
		return Rates{USD: decimal.NewFromInt(int64(date.Day()))}, nil
	})
	c := NewCache(src)
	day := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	s1, err := c.GetOrFetch(context.Background(), day)
	require.NoError(t, err)
	s2, err := c.GetOrFetch(context.Background(), day.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	s3, err := c.GetOrFetch(context.Background(), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.NotSame(t, s1, s3)
	assert.True(t, s3.Rates[USD].Equal(decimal.NewFromInt(11)))
	assert.True(t, s1.Rates[USD].Equal(decimal.NewFromInt(10)), "old snapshot must not be mutated")
}

func TestCacheDefaultsToToday(t *testing.T) {
	c := NewCache(SourceFunc(func(_ context.Context, date time.Time) (Rates, error) {
		return Rates{}, nil
	}))
	c.now = func() time.Time { return time.Date(2025, 1, 2, 23, 59, 0, 0, time.UTC) }
	s, err := c.GetOrFetch(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), s.Date)
}

func TestCacheConcurrentPopulation(t *testing.T) {
	var calls int32
	c := NewCache(SourceFunc(func(context.Context, time.Time) (Rates, error) {
		atomic.AddInt32(&calls, 1)
		return Rates{USD: d("90")}, nil
	}))
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := c.GetOrFetch(context.Background(), day)
			assert.NoError(t, err)
			assert.True(t, s.Rates[USD].Equal(d("90")))
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	fail := true
	c := NewCache(SourceFunc(func(context.Context, time.Time) (Rates, error) {
		if fail {
			return nil, errors.New("feed down")
		}
		return Rates{}, nil
	}))
	_, err := c.GetOrFetch(context.Background(), time.Now())
	require.Error(t, err)
	fail = false
	_, err = c.GetOrFetch(context.Background(), time.Now())
	require.NoError(t, err)
}

func TestCacheKeepsSeveralDays(t *testing.T) {
	var calls int32
	c := NewCache(SourceFunc(func(_ context.Context, date time.Time) (Rates, error) {
		atomic.AddInt32(&calls, 1)
		return Rates{USD: decimal.NewFromInt(int64(date.Day()))}, nil
	}))
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := c.GetOrFetch(context.Background(), today)
		require.NoError(t, err)
		_, err = c.GetOrFetch(context.Background(), past)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestCacheEvictsOldestDay(t *testing.T) {
	var calls int32
	c := NewCache(SourceFunc(func(context.Context, time.Time) (Rates, error) {
		atomic.AddInt32(&calls, 1)
		return Rates{}, nil
	}))
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i <= maxDays; i++ {
		_, err := c.GetOrFetch(context.Background(), first.AddDate(0, 0, i))
		require.NoError(t, err)
	}
	assert.Len(t, c.days, maxDays)

	_, err := c.GetOrFetch(context.Background(), first.AddDate(0, 0, maxDays))
	require.NoError(t, err)
	assert.EqualValues(t, maxDays+1, atomic.LoadInt32(&calls))

	_, err = c.GetOrFetch(context.Background(), first)
	require.NoError(t, err)
	assert.EqualValues(t, maxDays+2, atomic.LoadInt32(&calls))
}
