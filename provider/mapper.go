package provider

import (
	"fmt"
	"sort"
	"time"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/itinerary"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
)

// Carrier is the carrier name of every itinerary from this provider.
const Carrier = "FESCO"

var segmentModes = map[int]itinerary.Mode{
	1: itinerary.Rail,
	2: itinerary.Sea,
	3: itinerary.Truck,
}

// toItinerary normalizes a quoted route. The route's first container table
// describes the container of every segment; each segment is priced by its
// first container price.
func toItinerary(source string, r Route, date time.Time) (itinerary.Itinerary, error) {
	if len(r.Segments) == 0 {
		return itinerary.Itinerary{}, fmt.Errorf("route without segments")
	}
	var spec *container.Spec
	if len(r.Containers) > 0 {
		if s, ok := ParseContainer(r.Containers[0].NameEng); ok {
			spec = &s
		}
	}

	segments := append([]Segment(nil), r.Segments...)
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Order < segments[j].Order })

	it := itinerary.Itinerary{
		Source:        source,
		Segments:      make([]itinerary.Segment, 0, len(segments)),
		PossiblyStale: !r.DateTo.IsZero() && lane.Day(r.DateTo.Time).Before(lane.Day(date)),
	}
	for _, s := range segments {
		mode, ok := segmentModes[s.Type]
		if !ok {
			return itinerary.Itinerary{}, fmt.Errorf("segment %d: unknown type %d", s.Order, s.Type)
		}
		if len(s.Containers) == 0 {
			return itinerary.Itinerary{}, fmt.Errorf("segment %d: no price", s.Order)
		}
		seg := itinerary.Segment{
			Carrier:       Carrier,
			Mode:          mode,
			EffectiveFrom: r.DateFrom.Time,
			EffectiveTo:   r.DateTo.Time,
			Start:         location.Place{Name: s.BeginLocName, Country: s.BeginCountryName},
			End:           location.Place{Name: s.FinishLocName, Country: s.FinishCountryName},
			Container:     spec,
			Services:      map[string]*money.Price{},
			Price:         money.NewPrice(s.Containers[0].Price, money.Currency(s.Containers[0].Currency).Normalize()),
			CarrierKey:    Carrier,
			StartKey:      s.BeginLocName,
			EndKey:        s.FinishLocName,
		}
		if mode == itinerary.Sea {
			seg.BeginCond, seg.FinishCond = r.BeginCond, r.FinishCond
		}
		it.Segments = append(it.Segments, seg)
	}
	if err := it.Validate(); err != nil {
		return itinerary.Itinerary{}, err
	}
	return it, nil
}
