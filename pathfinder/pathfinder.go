// Package pathfinder enumerates the internal multimodal chains between two
// points: direct rail and sea legs, sea-rail, rail-sea and rail-sea-rail
// combinations, with the drop fee charged at the sea/rail boundary.
package pathfinder

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/fanout"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
)

// Query asks for every chain from Start to End valid on Date for one of
// Containers.
type Query struct {
	Start      location.ID
	End        location.ID
	Date       time.Time
	Containers []container.ID
}

// Finder runs every chain shape as an independent query against the lane
// repository and merges the results.
type Finder struct {
	repo    lane.Repository
	matcher Matcher
	logger  log.Logger
	limit   int
}

// Option configures a Finder.
type Option func(*Finder)

// WithMatcher sets the drop fee matcher and with it the tier priority.
func WithMatcher(m Matcher) Option {
	return func(f *Finder) { f.matcher = m }
}

// WithLogger sets the logger failed queries are reported to.
func WithLogger(logger log.Logger) Option {
	return func(f *Finder) { f.logger = logger }
}

// WithLimit bounds the number of queries in flight.
func WithLimit(n int) Option {
	return func(f *Finder) { f.limit = n }
}

// New returns a Finder over repo.
func New(repo lane.Repository, opts ...Option) *Finder {
	f := &Finder{
		repo:    repo,
		matcher: Matcher{priority: DefaultPriority},
		logger:  log.NewNopLogger(),
		limit:   fanout.DefaultLimit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns the distinct chains answering q. Chains are unique by the
// ordered carrier, start and end of their legs; when several variants produce
// the same chain the one listed first wins, so a chain with a drop fee of a
// higher priority tier shadows the same chain with a lower one or none. A
// failing variant is logged and contributes nothing. The only error returned
// is the cancellation of ctx.
func (f *Finder) Find(ctx context.Context, q Query) ([]Chain, error) {
	if len(q.Containers) == 0 {
		return nil, nil
	}
	vs := variants(f.matcher.Tiers())
	tasks := make([]fanout.Task[[]Chain], 0, len(vs))
	for _, v := range vs {
		v := v
		tasks = append(tasks, fanout.Task[[]Chain]{
			Name: v.name(),
			Run: func(ctx context.Context) ([]Chain, error) {
				return v.run(ctx, f.repo, q)
			},
		})
	}
	results := fanout.RunLimit(ctx, f.limit, tasks...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []Chain
	for _, chains := range fanout.Successes(log.With(f.logger, "component", "pathfinder"), results) {
		for _, c := range chains {
			k := c.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, c)
		}
	}
	return out, nil
}
