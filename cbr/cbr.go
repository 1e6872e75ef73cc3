// Package cbr fetches the daily exchange rates published by the Central Bank
// of Russia.
package cbr

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/text/encoding/charmap"

	"github.com/Qalifah/freight/money"
)

// DefaultURL is the daily rates feed.
const DefaultURL = "https://www.cbr.ru/scripts/XML_daily.asp"

type ratesRequest struct {
	Date time.Time
}

type valCurs struct {
	XMLName xml.Name `xml:"ValCurs"`
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  string `xml:"Nominal"`
	Value    string `xml:"Value"`
}

// Source is a money.Source reading the central bank feed.
type Source struct {
	fetch endpoint.Endpoint
}

// NewSource returns a source reading the feed at rawURL with client.
func NewSource(rawURL string, client *http.Client) (*Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	var fetch endpoint.Endpoint
	{
		fetch = kithttp.NewClient(
			http.MethodGet,
			u,
			encodeRatesRequest,
			decodeRatesResponse,
			kithttp.SetClient(client),
		).Endpoint()
		fetch = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "CBR Rates",
			Timeout: 30 * time.Second,
		}))(fetch)
	}
	return &Source{fetch: fetch}, nil
}

// Fetch implements money.Source.
func (s *Source) Fetch(ctx context.Context, date time.Time) (money.Rates, error) {
	resp, err := s.fetch(ctx, ratesRequest{Date: date})
	if err != nil {
		return nil, fmt.Errorf("cbr: %w", err)
	}
	return resp.(money.Rates), nil
}

func encodeRatesRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(ratesRequest)
	q := r.URL.Query()
	q.Set("date_req", req.Date.Format("02/01/2006"))
	r.URL.RawQuery = q.Encode()
	r.Header.Set("Accept", "application/xml")
	return nil
}

func decodeRatesResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", r.StatusCode)
	}
	return Parse(r.Body)
}

// Parse reads a ValCurs document. Values use a decimal comma and are quoted
// per Nominal units; the returned rates are per single unit.
func Parse(r io.Reader) (money.Rates, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	var doc valCurs
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	rates := make(money.Rates, len(doc.Valutes))
	for _, v := range doc.Valutes {
		value, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(v.Value), ",", ".", 1))
		if err != nil {
			return nil, fmt.Errorf("rate of %s: %w", v.CharCode, err)
		}
		nominal, err := decimal.NewFromString(strings.TrimSpace(v.Nominal))
		if err != nil || nominal.IsZero() {
			return nil, fmt.Errorf("nominal of %s: %q", v.CharCode, v.Nominal)
		}
		rates[money.Currency(v.CharCode).Normalize()] = value.Div(nominal)
	}
	return rates, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	case "utf-8", "":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
