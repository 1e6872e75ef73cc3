package money

import "github.com/shopspring/decimal"

// Converter converts prices with a fixed rate table and markup.
type Converter struct {
	rates  Rates
	markup decimal.Decimal
}

// NewConverter returns a converter adding markupPercent to every converted
// amount.
func NewConverter(rates Rates, markupPercent decimal.Decimal) *Converter {
	return &Converter{rates: rates, markup: markupPercent}
}

// Convert converts p into the currency to.
func (c *Converter) Convert(p Price, to Currency) (Price, error) {
	to = to.Normalize()
	amount, err := c.rates.Convert(p.Amount, p.Currency, to, c.markup)
	if err != nil {
		return Price{}, err
	}
	return Price{Amount: amount, Currency: to}, nil
}

// ConvertTree rewrites every price of the tree into the currency to. Prices
// already converted before an error stay converted.
func (c *Converter) ConvertTree(n Node, to Currency) error {
	return Walk(n, func(p *Price) error {
		converted, err := c.Convert(*p, to)
		if err != nil {
			return err
		}
		*p = converted
		return nil
	})
}
