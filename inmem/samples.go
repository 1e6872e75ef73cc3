package inmem

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func pt(id location.ID) *location.ID { return &id }

func carrierID(id lane.CarrierID) *lane.CarrierID { return &id }

// Sample container specs.
var (
	DC20Light = container.Spec{ID: 1, Size: 20, Type: container.DC, WeightFrom: decimal.Zero, WeightTo: dec(24), Name: "20'DC 0-24t"}
	DC20Heavy = container.Spec{ID: 2, Size: 20, Type: container.DC, WeightFrom: decimal.NewFromInt(24), WeightTo: dec(28), Name: "20'DC 24-28t"}
	DC40      = container.Spec{ID: 3, Size: 40, Type: container.DC, WeightFrom: decimal.Zero, WeightTo: dec(28), Name: "40'DC 0-28t"}
	HC40      = container.Spec{ID: 4, Size: 40, Type: container.HC, WeightFrom: decimal.Zero, WeightTo: dec(28), Name: "40'HC 0-28t"}
)

// Sample carriers.
var (
	Sinokor        = lane.Carrier{ID: 1, Name: "Sinokor"}
	RZDLogistics   = lane.Carrier{ID: 2, Name: "RZD Logistics"}
	TransContainer = lane.Carrier{ID: 3, Name: "TransContainer"}
)

var (
	sampleFrom = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sampleTo   = time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC)
)

func seaLeg(id int64, c lane.Carrier, spec container.Spec, from, to *location.Point, t lane.SeaTariff) lane.Leg {
	return lane.Leg{ID: id, Carrier: c, Container: spec, Start: from.ID, End: to.ID, EffectiveFrom: sampleFrom, EffectiveTo: sampleTo, Tariff: t}
}

func railLeg(id int64, c lane.Carrier, spec container.Spec, from, to *location.Point, t lane.RailTariff) lane.Leg {
	return lane.Leg{ID: id, Carrier: c, Container: spec, Start: from.ID, End: to.ID, EffectiveFrom: sampleFrom, EffectiveTo: sampleTo, Tariff: t}
}

// SampleLegs lists the legs of the demo data set.
func SampleLegs() []lane.Leg {
	return []lane.Leg{
		seaLeg(101, Sinokor, DC20Light, location.Shanghai, location.Vladivostok, lane.SeaTariff{FILO: dec(1200), Currency: money.USD}),
		seaLeg(102, Sinokor, DC20Light, location.Shanghai, location.Vostochny, lane.SeaTariff{FIFO: dec(1100), Currency: money.USD}),
		railLeg(103, RZDLogistics, DC20Light, location.Vladivostok, location.Moscow, lane.RailTariff{
			Price: decimal.NewFromInt(180000), Drop: dec(300), Guard: dec(5000), Currency: money.RUB, DropCurrency: money.USD,
		}),
		railLeg(104, TransContainer, DC20Light, location.Vostochny, location.Moscow, lane.RailTariff{
			Price: decimal.NewFromInt(170000), Currency: money.RUB,
		}),
		railLeg(105, RZDLogistics, DC20Light, location.Shanghai, location.Moscow, lane.RailTariff{
			Price: decimal.NewFromInt(420000), Currency: money.RUB,
		}),
		seaLeg(106, Sinokor, DC20Heavy, location.Shanghai, location.Vladivostok, lane.SeaTariff{FILO: dec(1400), Currency: money.USD}),
		railLeg(107, RZDLogistics, DC20Heavy, location.Vladivostok, location.Moscow, lane.RailTariff{
			Price: decimal.NewFromInt(195000), Drop: dec(300), Currency: money.RUB, DropCurrency: money.USD,
		}),
		seaLeg(108, Sinokor, DC20Light, location.Ningbo, location.Vladivostok, lane.SeaTariff{FILO: dec(1250), Currency: money.USD}),
		railLeg(109, RZDLogistics, DC20Light, location.Novosibirsk, location.Moscow, lane.RailTariff{
			Price: decimal.NewFromInt(90000), Currency: money.RUB,
		}),
	}
}

// SampleDropFees lists the drop fees of the demo data set.
func SampleDropFees() []lane.DropFee {
	return []lane.DropFee{
		{
			ID: 1, Carrier: carrierID(RZDLogistics.ID),
			SeaStart: pt(location.Shanghai.ID), SeaEnd: pt(location.Vladivostok.ID),
			RailStart: pt(location.Vladivostok.ID), RailEnd: pt(location.Moscow.ID),
			EffectiveFrom: sampleFrom, EffectiveTo: sampleTo,
			Price: decimal.NewFromInt(150), Currency: money.USD,
		},
		{
			ID: 2, Carrier: carrierID(TransContainer.ID), RailStart: pt(location.Vostochny.ID),
			EffectiveFrom: sampleFrom, EffectiveTo: sampleTo,
			Price: decimal.NewFromInt(120), Currency: money.USD,
		},
	}
}

// SampleContainers lists the container specs of the demo data set.
func SampleContainers() []container.Spec {
	return []container.Spec{DC20Light, DC20Heavy, DC40, HC40}
}

// Sample returns repositories populated with the demo data set.
func Sample() (*LocationRepository, *ContainerRepository, *LaneRepository) {
	lanes := NewLaneRepository()
	for _, l := range SampleLegs() {
		_ = lanes.StoreLeg(l)
	}
	for _, d := range SampleDropFees() {
		_ = lanes.StoreDropFee(d)
	}
	return NewLocationRepository(location.SamplePoints()...),
		NewContainerRepository(SampleContainers()...),
		lanes
}
