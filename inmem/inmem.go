// Package inmem provides in-memory implementations of all the domain
// repositories.
package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
)

// LocationRepository is an in-memory location.Repository.
type LocationRepository struct {
	mtx    sync.RWMutex
	points map[location.ID]*location.Point
}

// NewLocationRepository returns a new instance of an in-memory location
// repository holding the given points.
func NewLocationRepository(points ...*location.Point) *LocationRepository {
	r := &LocationRepository{points: make(map[location.ID]*location.Point)}
	for _, p := range points {
		r.points[p.ID] = p
	}
	return r
}

// Store adds or replaces a point.
func (r *LocationRepository) Store(p *location.Point) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.points[p.ID] = p
	return nil
}

// Find implements location.Repository.
func (r *LocationRepository) Find(_ context.Context, id location.ID) (*location.Point, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if p, ok := r.points[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", location.ErrUnknown, id)
}

// FindAll implements location.Repository.
func (r *LocationRepository) FindAll(context.Context) ([]*location.Point, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	ps := make([]*location.Point, 0, len(r.points))
	for _, p := range r.points {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	return ps, nil
}

// ContainerRepository is an in-memory container.Repository.
type ContainerRepository struct {
	mtx   sync.RWMutex
	specs map[container.ID]container.Spec
}

// NewContainerRepository returns a new instance of an in-memory container
// repository holding the given specs.
func NewContainerRepository(specs ...container.Spec) *ContainerRepository {
	r := &ContainerRepository{specs: make(map[container.ID]container.Spec)}
	for _, s := range specs {
		r.specs[s.ID] = s
	}
	return r
}

// Store adds or replaces a spec.
func (r *ContainerRepository) Store(s container.Spec) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.specs[s.ID] = s
	return nil
}

// FindAll implements container.Repository.
func (r *ContainerRepository) FindAll(context.Context) ([]container.Spec, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	specs := make([]container.Spec, 0, len(r.specs))
	for _, s := range r.specs {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs, nil
}

// LaneRepository is an in-memory lane.Repository.
type LaneRepository struct {
	mtx   sync.RWMutex
	legs  map[int64]lane.Leg
	drops map[int64]lane.DropFee
}

// NewLaneRepository returns a new instance of an in-memory lane repository.
func NewLaneRepository() *LaneRepository {
	return &LaneRepository{
		legs:  make(map[int64]lane.Leg),
		drops: make(map[int64]lane.DropFee),
	}
}

// StoreLeg adds or replaces a leg.
func (r *LaneRepository) StoreLeg(l lane.Leg) error {
	if l.EffectiveTo.Before(l.EffectiveFrom) {
		return fmt.Errorf("leg %d: validity window ends before it starts", l.ID)
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.legs[l.ID] = l
	return nil
}

// StoreDropFee adds or replaces a drop fee.
func (r *LaneRepository) StoreDropFee(d lane.DropFee) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.drops[d.ID] = d
	return nil
}

// FindLegs implements lane.Repository.
func (r *LaneRepository) FindLegs(ctx context.Context, f lane.LegFilter) ([]lane.Leg, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	var legs []lane.Leg
	for _, l := range r.legs {
		if f.Accepts(l) {
			legs = append(legs, l)
		}
	}
	sort.Slice(legs, func(i, j int) bool { return legs[i].ID < legs[j].ID })
	return legs, nil
}

// FindDropFees implements lane.Repository.
func (r *LaneRepository) FindDropFees(ctx context.Context, f lane.DropFilter) ([]lane.DropFee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	var fees []lane.DropFee
	for _, d := range r.drops {
		if f.Accepts(d) {
			fees = append(fees, d)
		}
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].ID < fees[j].ID })
	return fees, nil
}

// Terminals implements lane.Repository.
func (r *LaneRepository) Terminals(ctx context.Context, side lane.Side, date time.Time) ([]lane.Terminal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	seen := make(map[lane.Terminal]bool)
	var ts []lane.Terminal
	for _, l := range r.legs {
		if !l.Covers(date) {
			continue
		}
		t := lane.Terminal{Point: l.Start, Carrier: l.Carrier.Name}
		if side == lane.Destination {
			t.Point = l.End
		}
		if !seen[t] {
			seen[t] = true
			ts = append(ts, t)
		}
	}
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Point != ts[j].Point {
			return ts[i].Point < ts[j].Point
		}
		return ts[i].Carrier < ts[j].Carrier
	})
	return ts, nil
}
