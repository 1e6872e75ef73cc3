package calculating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/transport"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/sony/gobreaker"

	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
	"github.com/Qalifah/freight/provider"
)

const dateLayout = "2006-01-02"

// MakeHandler returns a handler for the calculating service. Requests that
// name no language, or an unsupported one, are answered in lang.
func MakeHandler(set Set, lang location.Lang, logger kitlog.Logger) http.Handler {
	r := mux.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		kithttp.ServerErrorEncoder(encodeError),
	}

	calculateHandler := kithttp.NewServer(
		set.CalculateEndpoint,
		decodeCalculateRequest(lang),
		encodeResponse,
		opts...,
	)
	ratesHandler := kithttp.NewServer(
		set.RatesEndpoint,
		decodeRatesRequest,
		encodeResponse,
		opts...,
	)
	departuresHandler := kithttp.NewServer(
		set.DeparturesEndpoint,
		decodeDeparturesRequest(lang),
		encodeResponse,
		opts...,
	)
	destinationsHandler := kithttp.NewServer(
		set.DestinationsEndpoint,
		decodeDestinationsRequest(lang),
		encodeResponse,
		opts...,
	)

	r.Handle("/calculating/v1/calculate", calculateHandler).Methods("POST")
	r.Handle("/calculating/v1/rates", ratesHandler).Methods("GET")
	r.Handle("/calculating/v1/points/departures", departuresHandler).Methods("GET")
	r.Handle("/calculating/v1/points/destinations", destinationsHandler).Methods("GET")

	return r
}

// pointID accepts point identifiers sent either as strings or as numbers.
type pointID string

func (p *pointID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = pointID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = pointID(n.String())
	return nil
}

func decodeCalculateRequest(lang location.Lang) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		var body struct {
			DispatchDate  string             `json:"dispatchDate"`
			DepartureID   map[string]pointID `json:"departureId"`
			DestinationID map[string]pointID `json:"destinationId"`
			CargoWeight   int64              `json:"cargoWeight"`
			ContainerType int                `json:"containerType"`
			Currency      string             `json:"currency"`
			Lang          string             `json:"lang"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		date, err := parseDate(body.DispatchDate)
		if err != nil {
			return nil, err
		}
		return calculateRequest{Request: Request{
			DispatchDate:  date,
			Departures:    points(body.DepartureID),
			Destinations:  points(body.DestinationID),
			CargoWeight:   body.CargoWeight,
			ContainerSize: body.ContainerType,
			Currency:      money.Currency(body.Currency),
			Lang:          parseLang(body.Lang, lang),
		}}, nil
	}
}

func points(m map[string]pointID) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = string(v)
	}
	return out
}

func decodeRatesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		return nil, err
	}
	return ratesRequest{Date: date}, nil
}

func decodeDeparturesRequest(lang location.Lang) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		q := r.URL.Query()
		date, err := parseDate(q.Get("date"))
		if err != nil {
			return nil, err
		}
		return departuresRequest{Date: dateOrToday(date), Lang: parseLang(q.Get("lang"), lang)}, nil
	}
}

func decodeDestinationsRequest(lang location.Lang) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		q := r.URL.Query()
		date, err := parseDate(q.Get("date"))
		if err != nil {
			return nil, err
		}
		return destinationsRequest{
			Date:    dateOrToday(date),
			Service: q.Get("service"),
			From:    q.Get("from"),
			Lang:    parseLang(q.Get("lang"), lang),
		}, nil
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidArgument, s)
	}
	return t, nil
}

func dateOrToday(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func parseLang(s string, def location.Lang) location.Lang {
	switch l := location.Lang(strings.ToLower(s)); l {
	case location.RU, location.EN:
		return l
	}
	return def
}

func encodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

type errorer interface {
	error() error
}

// encode errors from business-logic
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusOf(err))
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, location.ErrUnknown), errors.Is(err, ErrUnknownService):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, location.ErrInvalidID), errors.Is(err, money.ErrUnknownCurrency):
		return http.StatusBadRequest
	case errors.Is(err, ratelimit.ErrLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.Is(err, provider.ErrUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
