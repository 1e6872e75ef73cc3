package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	stdopentracing "github.com/opentracing/opentracing-go"

	"github.com/Qalifah/freight/calculating"
	"github.com/Qalifah/freight/cbr"
	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/inmem"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/pathfinder"
	"github.com/Qalifah/freight/postgres"
	"github.com/Qalifah/freight/provider"
	"github.com/Qalifah/freight/routing"
)

type repositories struct {
	locations  location.Repository
	containers container.Repository
	lanes      lane.Repository
	close      func()
}

func openRepositories(ctx context.Context) (*repositories, error) {
	if cfg.DatabaseURL == "" {
		level.Info(logger).Log("msg", "no database configured, using the demo data set")
		locations, containers, lanes := inmem.Sample()
		return &repositories{locations, containers, lanes, func() {}}, nil
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &repositories{
		locations:  postgres.NewLocationRepository(db),
		containers: postgres.NewContainerRepository(db),
		lanes:      postgres.NewLaneRepository(db),
		close:      func() { db.Close() },
	}, nil
}

func rateCache() (*money.Cache, error) {
	src, err := cbr.NewSource(cfg.CBRURL, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, err
	}
	return money.NewCache(src), nil
}

// buildService wires the calculating service and its route sources. The
// returned func releases the database connection.
func buildService(ctx context.Context, tracer stdopentracing.Tracer) (calculating.Service, func(), error) {
	markup, err := cfg.Markup()
	if err != nil {
		return nil, nil, err
	}
	tiers, err := cfg.Tiers()
	if err != nil {
		return nil, nil, err
	}
	matcher, err := pathfinder.NewMatcher(tiers...)
	if err != nil {
		return nil, nil, err
	}
	rates, err := rateCache()
	if err != nil {
		return nil, nil, err
	}
	repos, err := openRepositories(ctx)
	if err != nil {
		return nil, nil, err
	}

	finder := pathfinder.New(repos.lanes,
		pathfinder.WithMatcher(matcher),
		pathfinder.WithLogger(logger),
	)
	internal := routing.NewInternalService(cfg.InternalName,
		repos.locations, repos.containers, repos.lanes, finder,
		log.With(logger, "component", "routing", "source", cfg.InternalName))

	providers := map[string]routing.Service{}
	if cfg.FescoAPIKey != "" {
		client, err := provider.NewClient(provider.Config{
			BaseURL:   cfg.FescoBaseURL,
			PointsURL: cfg.FescoPointsURL,
			APIKey:    cfg.FescoAPIKey,
			Tracer:    tracer,
			Logger:    log.With(logger, "component", "fesco"),
		})
		if err != nil {
			repos.close()
			return nil, nil, err
		}
		providers[provider.Carrier] = provider.NewService(provider.Carrier, client, log.With(logger, "component", "fesco"))
	} else {
		level.Info(logger).Log("msg", "no FESCO API key configured, carrier disabled")
	}

	svc := calculating.NewService(cfg.InternalName, internal, providers, rates, markup,
		log.With(logger, "component", "calculating"))
	return svc, repos.close, nil
}
