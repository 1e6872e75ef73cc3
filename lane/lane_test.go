package lane

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func pt(id location.ID) *location.ID { return &id }

var (
	seaLeg = Leg{
		ID: 1, Carrier: Carrier{ID: 1}, Container: container.Spec{ID: 1},
		Start: 6, End: 20, EffectiveFrom: day(6, 1), EffectiveTo: day(6, 30),
		Tariff: SeaTariff{Currency: money.USD},
	}
	railLeg = Leg{
		ID: 2, Carrier: Carrier{ID: 2}, Container: container.Spec{ID: 1},
		Start: 20, End: 82, EffectiveFrom: day(6, 1), EffectiveTo: day(6, 30),
		Tariff: RailTariff{Price: decimal.NewFromInt(1), Currency: money.RUB},
	}
)

func TestLegCovers(t *testing.T) {
	assert.True(t, seaLeg.Covers(day(6, 1)))
	assert.True(t, seaLeg.Covers(day(6, 30).Add(23*time.Hour)))
	assert.False(t, seaLeg.Covers(day(5, 31)))
	assert.False(t, seaLeg.Covers(day(7, 1)))
	assert.True(t, seaLeg.ExpiredBy(day(7, 1)))
	assert.False(t, seaLeg.ExpiredBy(day(6, 30)))
}

func TestLegMode(t *testing.T) {
	assert.Equal(t, Sea, seaLeg.Mode())
	assert.Equal(t, Rail, railLeg.Mode())
	assert.Equal(t, Mode(0), Leg{}.Mode())
}

func TestDropTier(t *testing.T) {
	tests := []struct {
		name string
		fee  DropFee
		want Tier
	}{
		{"full", DropFee{SeaEnd: pt(20), RailStart: pt(20)}, Full},
		{"rail", DropFee{RailEnd: pt(82)}, RailOnly},
		{"sea", DropFee{SeaStart: pt(6)}, SeaOnly},
		{"none", DropFee{}, NoTier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fee.Tier())
		})
	}
}

func TestDropMatches(t *testing.T) {
	rc, sc := CarrierID(2), CarrierID(1)
	other := container.ID(9)
	tests := []struct {
		name string
		fee  DropFee
		want bool
	}{
		{"full exact", DropFee{SeaStart: pt(6), SeaEnd: pt(20), RailStart: pt(20), RailEnd: pt(82), Carrier: &rc}, true},
		{"full wildcards", DropFee{SeaEnd: pt(20), RailStart: pt(20)}, true},
		{"full wrong rail end", DropFee{SeaStart: pt(6), RailEnd: pt(50)}, false},
		{"full keyed on rail carrier", DropFee{SeaStart: pt(6), RailEnd: pt(82), Carrier: &sc}, false},
		{"rail on rail carrier", DropFee{RailStart: pt(20), Carrier: &rc}, true},
		{"rail on sea carrier", DropFee{RailStart: pt(20), Carrier: &sc}, false},
		{"sea on sea carrier", DropFee{SeaStart: pt(6), Carrier: &sc}, true},
		{"sea on rail carrier", DropFee{SeaStart: pt(6), Carrier: &rc}, false},
		{"other container", DropFee{SeaStart: pt(6), Container: &other}, false},
		{"no tier", DropFee{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fee.Matches(seaLeg, railLeg))
		})
	}
}

func TestFilters(t *testing.T) {
	f := LegFilter{Mode: Sea, From: []location.ID{6}, Date: day(6, 10), Containers: []container.ID{1}}
	assert.True(t, f.Accepts(seaLeg))
	assert.False(t, f.Accepts(railLeg))
	f.To = []location.ID{21}
	assert.False(t, f.Accepts(seaLeg))
	f.To = nil
	f.Containers = []container.ID{2}
	assert.False(t, f.Accepts(seaLeg))

	c := container.ID(1)
	d := DropFilter{Tier: SeaOnly, Date: day(6, 10), Containers: []container.ID{1}}
	fee := DropFee{SeaStart: pt(6), EffectiveFrom: day(6, 1), EffectiveTo: day(6, 30)}
	assert.True(t, d.Accepts(fee))
	fee.Container = &c
	assert.True(t, d.Accepts(fee))
	d.Containers = []container.ID{2}
	assert.False(t, d.Accepts(fee))
	d.Tier = Full
	fee.Container = nil
	assert.False(t, d.Accepts(fee))
}
