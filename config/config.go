// Package config holds the process configuration of the freight daemon.
// Values come from the environment and may be overridden by command line
// flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	kitzap "github.com/go-kit/kit/log/zap"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Qalifah/freight/cbr"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/provider"
)

// Config is the process configuration.
type Config struct {
	Port           string
	DatabaseURL    string
	FescoAPIKey    string
	FescoBaseURL   string
	FescoPointsURL string
	CBRURL         string
	MarkupPercent  string
	DropPriority   string
	InternalName   string
	DefaultLang    string
	LogFormat      string
	LogLevel       string
	ZipkinURL      string
}

// Load reads the configuration from the environment, falling back to the
// defaults for unset variables.
func Load() *Config {
	return &Config{
		Port:           envOr("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		FescoAPIKey:    os.Getenv("FESCO_API_KEY"),
		FescoBaseURL:   envOr("FESCO_BASE_URL", provider.DefaultBaseURL),
		FescoPointsURL: envOr("FESCO_POINTS_URL", provider.DefaultPointsURL),
		CBRURL:         envOr("CBR_URL", cbr.DefaultURL),
		MarkupPercent:  envOr("PRICE_MARKUP_PERCENT", "0"),
		DropPriority:   envOr("DROP_PRIORITY", "full,rail,sea"),
		InternalName:   envOr("INTERNAL_SERVICE_NAME", "custom"),
		DefaultLang:    envOr("DEFAULT_LANG", string(location.RU)),
		LogFormat:      envOr("LOG_FORMAT", "logfmt"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		ZipkinURL:      os.Getenv("ZIPKIN_URL"),
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// ErrInvalid is returned when a configuration value can't be used.
var ErrInvalid = errors.New("invalid configuration")

// Markup parses the price markup percentage.
func (c *Config) Markup() (decimal.Decimal, error) {
	m, err := decimal.NewFromString(strings.TrimSpace(c.MarkupPercent))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: PRICE_MARKUP_PERCENT %q", ErrInvalid, c.MarkupPercent)
	}
	if m.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: PRICE_MARKUP_PERCENT must not be negative", ErrInvalid)
	}
	return m, nil
}

var tierNames = map[string]lane.Tier{
	"full": lane.Full,
	"rail": lane.RailOnly,
	"sea":  lane.SeaOnly,
}

// Tiers parses the drop fee priority, a comma separated list of full, rail
// and sea.
func (c *Config) Tiers() ([]lane.Tier, error) {
	var tiers []lane.Tier
	for _, name := range strings.Split(c.DropPriority, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		t, ok := tierNames[name]
		if !ok {
			return nil, fmt.Errorf("%w: drop tier %q", ErrInvalid, name)
		}
		tiers = append(tiers, t)
	}
	return tiers, nil
}

// Lang returns the default alias language.
func (c *Config) Lang() location.Lang {
	if location.Lang(strings.ToLower(c.DefaultLang)) == location.EN {
		return location.EN
	}
	return location.RU
}

// Validate checks every value that is parsed lazily.
func (c *Config) Validate() error {
	if _, err := c.Markup(); err != nil {
		return err
	}
	if _, err := c.Tiers(); err != nil {
		return err
	}
	if c.InternalName == "" {
		return fmt.Errorf("%w: internal service name is empty", ErrInvalid)
	}
	switch c.LogFormat {
	case "logfmt", "json", "zap":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// Logger builds the root logger: logfmt or JSON written to stderr, or a zap
// production logger, filtered at the configured level.
func (c *Config) Logger() log.Logger {
	var logger log.Logger
	switch c.LogFormat {
	case "json":
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
	case "zap":
		zl, err := zap.NewProduction()
		if err != nil {
			zl = zap.NewNop()
		}
		logger = kitzap.NewZapSugarLogger(zl, zapcore.InfoLevel)
	default:
		logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return level.NewFilter(logger, allow(c.LogLevel))
}

func allow(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	}
	return level.AllowInfo()
}
