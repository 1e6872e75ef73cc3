package pathfinder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Qalifah/freight/lane"
)

// Chain is an ordered sequence of legs where every leg starts at the point the
// previous one ends and all legs carry the same container, plus the drop fee
// matched for the chain, if any.
type Chain struct {
	Legs          []lane.Leg
	Drop          *lane.DropFee
	Tier          lane.Tier
	PossiblyStale bool
}

// Key identifies a chain by the ordered carrier, start and end of its legs.
func (c Chain) Key() string {
	var b strings.Builder
	for i, l := range c.Legs {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%d|%d|%d", l.Carrier.ID, l.Start, l.End)
	}
	return b.String()
}

// ErrBrokenChain is used when a chain is empty, not contiguous or mixes
// containers.
var ErrBrokenChain = errors.New("broken chain")

// Validate checks the structural invariants of the chain.
func (c Chain) Validate() error {
	if len(c.Legs) == 0 {
		return ErrBrokenChain
	}
	for i := 1; i < len(c.Legs); i++ {
		prev, cur := c.Legs[i-1], c.Legs[i]
		if prev.End != cur.Start {
			return fmt.Errorf("%w: leg %d starts at %s, previous ends at %s", ErrBrokenChain, i, cur.Start, prev.End)
		}
		if prev.Container.ID != cur.Container.ID {
			return fmt.Errorf("%w: leg %d carries container %d, previous %d", ErrBrokenChain, i, cur.Container.ID, prev.Container.ID)
		}
	}
	return nil
}

func stale(legs []lane.Leg, date time.Time) bool {
	for _, l := range legs {
		if l.ExpiredBy(date) {
			return true
		}
	}
	return false
}

// boundary returns the sea leg of the chain and the rail leg adjacent to it:
// the one following it when there is one, the one preceding it otherwise.
func boundary(legs []lane.Leg) (sea, rail lane.Leg, ok bool) {
	for i, l := range legs {
		if l.Mode() != lane.Sea {
			continue
		}
		if i+1 < len(legs) && legs[i+1].Mode() == lane.Rail {
			return l, legs[i+1], true
		}
		if i > 0 && legs[i-1].Mode() == lane.Rail {
			return l, legs[i-1], true
		}
		return l, lane.Leg{}, false
	}
	return lane.Leg{}, lane.Leg{}, false
}
