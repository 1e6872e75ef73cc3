package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/tracing/opentracing"
	kithttp "github.com/go-kit/kit/transport/http"
	stdopentracing "github.com/opentracing/opentracing-go"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Qalifah/freight/location"
)

// Default API locations.
const (
	DefaultBaseURL   = "https://my.fesco.com"
	DefaultPointsURL = "https://api.fesco.com"
)

const (
	listingPath      = "/api/v2/lk/offers/fit/wte"
	quotePath        = "/api/v2/lk/offers/fit"
	departuresPath   = "/api/v1/lk/calc/fit/from"
	destinationsPath = "/api/v1/lk/calc/fit/to"
	dateLayout       = "2006-01-02"
)

// Defaults of the per-endpoint rate limit.
const (
	DefaultRateLimit rate.Limit = 20
	DefaultBurst                = 50
)

// A breaker opens once at least breakerMinRequests calls were made in the
// current interval and breakerFailureRatio of them failed.
const (
	breakerMinRequests  = 20
	breakerFailureRatio = 0.6
)

// Config holds the client settings.
type Config struct {
	BaseURL   string
	PointsURL string
	APIKey    string
	// HTTPClient defaults to a client with a 30 second timeout.
	HTTPClient *http.Client
	// RateLimit and Burst bound the calls per second of each endpoint.
	// Calls over the limit wait for their turn or for their context to end.
	RateLimit rate.Limit
	Burst     int
	// Tracer defaults to a no-op tracer.
	Tracer stdopentracing.Tracer
	Logger log.Logger
}

// Client talks to the carrier API. Every endpoint has its own rate limiter and
// circuit breaker. Only transport failures and 5xx answers count against a
// breaker; a 4xx or an unreadable body concerns a single lane and is returned
// to the caller without affecting other calls.
type Client struct {
	listing      endpoint.Endpoint
	quote        endpoint.Endpoint
	departures   endpoint.Endpoint
	destinations endpoint.Endpoint
}

// NewClient returns a client for the API described by cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PointsURL == "" {
		cfg.PointsURL = DefaultPointsURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Tracer == nil {
		cfg.Tracer = stdopentracing.NoopTracer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	points, err := url.Parse(cfg.PointsURL)
	if err != nil {
		return nil, err
	}

	options := []kithttp.ClientOption{
		kithttp.SetClient(cfg.HTTPClient),
		kithttp.ClientBefore(bearer(cfg.APIKey)),
		kithttp.ClientBefore(opentracing.ContextToHTTP(cfg.Tracer, cfg.Logger)),
	}
	build := func(root *url.URL, path, name string, dec kithttp.DecodeResponseFunc) endpoint.Endpoint {
		var e endpoint.Endpoint
		{
			e = kithttp.NewClient(http.MethodGet, root.ResolveReference(&url.URL{Path: path}), encodeQuery, dec, options...).Endpoint()
			e = opentracing.TraceClient(cfg.Tracer, name)(e)
			e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:        name,
				Interval:    time.Minute,
				Timeout:     30 * time.Second,
				ReadyToTrip: tripOnRatio,
			}))(e)
			e = ratelimit.NewDelayingLimiter(rate.NewLimiter(cfg.RateLimit, cfg.Burst))(e)
		}
		return e
	}

	return &Client{
		listing:      build(base, listingPath, "FESCO Listing", decodeListing),
		quote:        build(base, quotePath, "FESCO Quote", decodeQuote),
		departures:   build(points, departuresPath, "FESCO Departures", decodePoints),
		destinations: build(points, destinationsPath, "FESCO Destinations", decodePoints),
	}, nil
}

// Listing returns the container tables offered between two points on date.
func (c *Client) Listing(ctx context.Context, date time.Time, from, to string, lang location.Lang) ([]ContainerTable, error) {
	resp, err := c.listing(ctx, query{lang: lang, values: url.Values{
		"date": {date.Format(dateLayout)},
		"from": {from},
		"to":   {to},
	}})
	return result[ContainerTable](resp, err)
}

// Quote returns the routes offered for one container table.
func (c *Client) Quote(ctx context.Context, date time.Time, from, to, wte string, lang location.Lang) ([]Route, error) {
	resp, err := c.quote(ctx, query{lang: lang, values: url.Values{
		"date": {date.Format(dateLayout)},
		"from": {from},
		"to":   {to},
		"wte":  {wte},
		"co":   {"COC"},
	}})
	return result[Route](resp, err)
}

// Departures lists the points routes leave from on date.
func (c *Client) Departures(ctx context.Context, date time.Time, lang location.Lang) ([]Point, error) {
	resp, err := c.departures(ctx, query{lang: lang, values: url.Values{"date": {date.Format(dateLayout)}}})
	return result[Point](resp, err)
}

// Destinations lists the points reachable from a departure point on date.
func (c *Client) Destinations(ctx context.Context, date time.Time, from string, lang location.Lang) ([]Point, error) {
	resp, err := c.destinations(ctx, query{lang: lang, values: url.Values{
		"date": {date.Format(dateLayout)},
		"from": {from},
	}})
	return result[Point](resp, err)
}

type query struct {
	lang   location.Lang
	values url.Values
}

func bearer(token string) kithttp.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		r.Header.Set("Authorization", "Bearer "+token)
		return ctx
	}
}

func encodeQuery(_ context.Context, r *http.Request, request interface{}) error {
	q := request.(query)
	r.URL.RawQuery = q.values.Encode()
	r.Header.Set("Accept", "application/json")
	lang := location.RU
	if q.lang != "" {
		lang = q.lang
	}
	r.Header.Set("X-Lk-Lang", strings.ToUpper(string(lang)))
	return nil
}

// envelope is the wrapper of every API response.
type envelope[T any] struct {
	Data []T `json:"data"`
}

// rejection is an answer that concerns only the request it was given for. It
// is returned as a response so the circuit breaker records a success.
type rejection struct {
	err error
}

func tripOnRatio(c gobreaker.Counts) bool {
	return c.Requests >= breakerMinRequests &&
		float64(c.TotalFailures)/float64(c.Requests) >= breakerFailureRatio
}

func decodeData[T any](r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(r.Body, 512))
		err := fmt.Errorf("%w: status %d: %s", ErrUnavailable, r.StatusCode, bytes.TrimSpace(body))
		if r.StatusCode >= http.StatusInternalServerError {
			return nil, err
		}
		return rejection{err}, nil
	}
	var env envelope[T]
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		return rejection{fmt.Errorf("%w: malformed body: %v", ErrUnavailable, err)}, nil
	}
	return env.Data, nil
}

func result[T any](resp interface{}, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if r, ok := resp.(rejection); ok {
		return nil, r.err
	}
	return resp.([]T), nil
}

func decodeListing(_ context.Context, r *http.Response) (interface{}, error) {
	return decodeData[ContainerTable](r)
}

func decodeQuote(_ context.Context, r *http.Response) (interface{}, error) {
	return decodeData[Route](r)
}

func decodePoints(_ context.Context, r *http.Response) (interface{}, error) {
	return decodeData[Point](r)
}

// Code identifies a container table or a point. The API sends it either as a
// string or as a number.
type Code string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Code) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("code %s: %w", b, err)
	}
	*c = Code(n.String())
	return nil
}

// apiTime accepts the date and timestamp layouts the API uses.
type apiTime struct {
	time.Time
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", dateLayout}

func (t *apiTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", s)
}

// ContainerTable is an entry of the container listing.
type ContainerTable struct {
	Code    Code   `json:"ContainerCode"`
	Name    string `json:"ContainerName"`
	NameEng string `json:"ContainerNameEng"`
}

// SegmentPrice is the price of a segment for one container table.
type SegmentPrice struct {
	Code     Code            `json:"ContainerCode"`
	Price    decimal.Decimal `json:"Price"`
	Currency string          `json:"Currency"`
}

// Segment is one hop of a quoted route.
type Segment struct {
	Order             int            `json:"SegmentOrder"`
	Type              int            `json:"SegmentType"`
	BeginCountryName  string         `json:"BeginCountryName"`
	BeginLocName      string         `json:"BeginLocName"`
	FinishCountryName string         `json:"FinishCountryName"`
	FinishLocName     string         `json:"FinishLocName"`
	Containers        []SegmentPrice `json:"Containers"`
}

// Route is a quoted route.
type Route struct {
	DateFrom   apiTime          `json:"DateFrom"`
	DateTo     apiTime          `json:"DateTo"`
	BeginCond  string           `json:"BeginCond"`
	FinishCond string           `json:"FinishCond"`
	Containers []ContainerTable `json:"Containers"`
	Segments   []Segment        `json:"Segments"`
}

// Point is an entry of a point listing.
type Point struct {
	ID      Code   `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}
