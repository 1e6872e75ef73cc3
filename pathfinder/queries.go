package pathfinder

import (
	"context"

	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
)

// shape is a fixed sequence of transport modes a chain follows.
type shape struct {
	name  string
	modes []lane.Mode
}

func railOnly() shape    { return shape{"rail", []lane.Mode{lane.Rail}} }
func seaOnly() shape     { return shape{"sea", []lane.Mode{lane.Sea}} }
func seaRail() shape     { return shape{"sea-rail", []lane.Mode{lane.Sea, lane.Rail}} }
func railSea() shape     { return shape{"rail-sea", []lane.Mode{lane.Rail, lane.Sea}} }
func railSeaRail() shape { return shape{"rail-sea-rail", []lane.Mode{lane.Rail, lane.Sea, lane.Rail}} }

// variant is one independent query: a shape, optionally inner-joined with the
// drop fees of one tier.
type variant struct {
	shape shape
	tier  lane.Tier
}

func (v variant) name() string {
	if v.tier == lane.NoTier {
		return v.shape.name
	}
	return v.shape.name + "/" + v.tier.String()
}

// variants lists every query in the order their results take precedence.
// Single-leg shapes come first, then two-leg and three-leg shapes, each
// starting with the drop tiers in priority order and ending without a drop.
func variants(priority []lane.Tier) []variant {
	out := []variant{{shape: railOnly()}, {shape: seaOnly()}}
	for _, s := range []shape{seaRail(), railSea(), railSeaRail()} {
		for _, t := range priority {
			out = append(out, variant{shape: s, tier: t})
		}
		out = append(out, variant{shape: s})
	}
	return out
}

// run evaluates the variant against the repository.
func (v variant) run(ctx context.Context, repo lane.Repository, q Query) ([]Chain, error) {
	chains, err := v.shape.join(ctx, repo, q)
	if err != nil || len(chains) == 0 {
		return nil, err
	}
	if v.tier == lane.NoTier {
		return chains, nil
	}
	fees, err := repo.FindDropFees(ctx, lane.DropFilter{Tier: v.tier, Date: q.Date, Containers: q.Containers})
	if err != nil {
		return nil, err
	}
	var out []Chain
	for _, c := range chains {
		if fee := matchTier(v.tier, c.Legs, fees); fee != nil {
			c.Drop, c.Tier = fee, v.tier
			out = append(out, c)
		}
	}
	return out, nil
}

// join fetches the legs of every position of the shape and links them into
// contiguous chains from q.Start to q.End. Each position only asks for legs
// departing from where the previous position's candidates arrive.
func (s shape) join(ctx context.Context, repo lane.Repository, q Query) ([]Chain, error) {
	partial := [][]lane.Leg{nil}
	from := []location.ID{q.Start}
	for i, mode := range s.modes {
		f := lane.LegFilter{Mode: mode, From: from, Date: q.Date, Containers: q.Containers}
		last := i == len(s.modes)-1
		if last {
			f.To = []location.ID{q.End}
		}
		legs, err := repo.FindLegs(ctx, f)
		if err != nil {
			return nil, err
		}
		partial = extend(partial, legs, last, q.End)
		if len(partial) == 0 {
			return nil, nil
		}
		from = ends(partial)
	}
	out := make([]Chain, 0, len(partial))
	for _, legs := range partial {
		out = append(out, Chain{Legs: legs, PossiblyStale: stale(legs, q.Date)})
	}
	return out, nil
}

// extend appends every fitting leg to every partial chain. The first leg must
// leave from the start point, later ones from where the chain ends, and all of
// them must carry the container of the first leg. No chain visits a point
// twice.
func extend(partial [][]lane.Leg, legs []lane.Leg, last bool, end location.ID) [][]lane.Leg {
	var out [][]lane.Leg
	for _, p := range partial {
		for _, l := range legs {
			if len(p) > 0 {
				tail := p[len(p)-1]
				if tail.End != l.Start || tail.Container.ID != l.Container.ID {
					continue
				}
			}
			if !last && l.End == end {
				continue
			}
			if visits(p, l.End) {
				continue
			}
			next := make([]lane.Leg, len(p), len(p)+1)
			copy(next, p)
			out = append(out, append(next, l))
		}
	}
	return out
}

func visits(legs []lane.Leg, p location.ID) bool {
	for _, l := range legs {
		if l.Start == p {
			return true
		}
	}
	return false
}

func ends(partial [][]lane.Leg) []location.ID {
	seen := make(map[location.ID]bool)
	var out []location.ID
	for _, p := range partial {
		e := p[len(p)-1].End
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
