package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Qalifah/freight/calculating"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculating API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	serveCmd.Flags().StringVar(&cfg.ZipkinURL, "zipkin-url", cfg.ZipkinURL, "zipkin collector URL; tracing is off when empty")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	httpAddr := net.JoinHostPort("", cfg.Port)

	var zipkinTracer *stdzipkin.Tracer
	if cfg.ZipkinURL != "" {
		reporter := zipkinhttp.NewReporter(cfg.ZipkinURL)
		defer reporter.Close()
		ep, err := stdzipkin.NewEndpoint("freightd", net.JoinHostPort("localhost", cfg.Port))
		if err != nil {
			return fmt.Errorf("zipkin endpoint: %w", err)
		}
		zipkinTracer, err = stdzipkin.NewTracer(reporter, stdzipkin.WithLocalEndpoint(ep))
		if err != nil {
			return fmt.Errorf("zipkin tracer: %w", err)
		}
		level.Info(logger).Log("tracer", "zipkin", "url", cfg.ZipkinURL)
	}
	otTracer := stdopentracing.GlobalTracer()

	svc, closeRepos, err := buildService(ctx, otTracer)
	if err != nil {
		return err
	}
	defer closeRepos()

	fieldKeys := []string{"method"}
	svc = calculating.NewLoggingService(log.With(logger, "component", "calculating"), svc)
	svc = calculating.NewInstrumentingService(
		kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "api",
			Subsystem: "calculating_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys),
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "api",
			Subsystem: "calculating_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys),
		kitprometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: "api",
			Subsystem: "calculating_service",
			Name:      "itineraries",
			Help:      "Itineraries returned per calculation.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}, []string{"bucket"}),
		svc,
	)

	httpLogger := log.With(logger, "component", "http")

	mux := http.NewServeMux()
	mux.Handle("/calculating/v1/", calculating.MakeHandler(calculating.NewSet(svc, otTracer, zipkinTracer), cfg.Lang(), httpLogger))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: httpAddr, Handler: accessControl(mux)}

	errs := make(chan error, 2)
	go func() {
		level.Info(logger).Log("transport", "http", "address", httpAddr, "msg", "listening")
		errs <- srv.ListenAndServe()
	}()
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	reason := <-errs
	level.Info(logger).Log("terminated", reason)

	shutdown, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}

func accessControl(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")

		if r.Method == "OPTIONS" {
			return
		}

		h.ServeHTTP(w, r)
	})
}
