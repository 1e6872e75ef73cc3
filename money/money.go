// Package money converts prices between currencies using a table of rates
// relative to the rouble.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

// Currencies the system knows by name.
const (
	RUB Currency = "RUB"
	RUR Currency = "RUR"
	USD Currency = "USD"
	EUR Currency = "EUR"
	CNY Currency = "CNY"
)

// Reference is the currency every rate is quoted against.
const Reference = RUB

// Normalize upper-cases the code and maps the legacy RUR code to RUB.
func (c Currency) Normalize() Currency {
	n := Currency(strings.ToUpper(strings.TrimSpace(string(c))))
	if n == RUR {
		return RUB
	}
	return n
}

// Price is an amount in a currency.
type Price struct {
	Amount   decimal.Decimal `json:"price"`
	Currency Currency        `json:"currency"`
}

// NewPrice returns a price with a normalized currency.
func NewPrice(amount decimal.Decimal, c Currency) Price {
	return Price{Amount: amount, Currency: c.Normalize()}
}

func (p Price) String() string {
	return p.Amount.StringFixed(2) + " " + string(p.Currency)
}

// ErrUnknownCurrency is used when a currency is missing from the rate table.
var ErrUnknownCurrency = errors.New("unknown currency")

// Rates maps a currency to the number of roubles one unit of it is worth.
type Rates map[Currency]decimal.Decimal

// Rate returns the rate of c. The reference currency and its legacy alias are
// always 1, whether or not the table lists them.
func (r Rates) Rate(c Currency) (decimal.Decimal, error) {
	c = c.Normalize()
	if c == Reference {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := r[c]
	if !ok || rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, c)
	}
	return rate, nil
}

// Has reports whether c can be converted with this table.
func (r Rates) Has(c Currency) bool {
	_, err := r.Rate(c)
	return err == nil
}

var hundred = decimal.NewFromInt(100)

// Convert returns amount * (1 + markupPercent/100) * rate[from] / rate[to].
func (r Rates) Convert(amount decimal.Decimal, from, to Currency, markupPercent decimal.Decimal) (decimal.Decimal, error) {
	rf, err := r.Rate(from)
	if err != nil {
		return decimal.Zero, err
	}
	rt, err := r.Rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	marked := amount.Add(amount.Mul(markupPercent).Div(hundred))
	return marked.Mul(rf).Div(rt), nil
}
