// Package currency converts checkout amounts into the gateway's base
// currency (INR) using a static rate table loaded once at startup.
package currency

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/quantumphp123/CCAvenuePHP/internal/domain"
)

const BaseCurrency = "INR"

// Converter holds the exchange-rate table. Rates are "INR per one unit
// of the currency" (X -> INR); the base currency is implicitly 1.0.
type Converter struct {
	rates map[string]decimal.Decimal
}

// Load reads a {"USD": 83.2, ...} JSON file and builds a Converter.
func Load(path string) (*Converter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}

	var table map[string]float64
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse rates file: %w", err)
	}

	c := &Converter{rates: make(map[string]decimal.Decimal, len(table)+1)}
	for code, rate := range table {
		c.rates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	c.rates[BaseCurrency] = decimal.NewFromInt(1)
	return c, nil
}

// NewWithRates builds a Converter from an in-memory table; used by
// tests and callers that source rates elsewhere.
func NewWithRates(table map[string]float64) *Converter {
	c := &Converter{rates: make(map[string]decimal.Decimal, len(table)+1)}
	for code, rate := range table {
		c.rates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	c.rates[BaseCurrency] = decimal.NewFromInt(1)
	return c
}

// Convert converts an amount in the given currency to INR by
// multiplying with the table rate. Unknown currencies fail with
// domain.ErrUnsupportedCurrency.
func (c *Converter) Convert(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(code)
	rate, ok := c.rates[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, code)
	}
	if code == BaseCurrency {
		return amount, nil
	}
	return amount.Mul(rate), nil
}

// Supported reports whether a currency has a rate entry.
func (c *Converter) Supported(code string) bool {
	_, ok := c.rates[strings.ToUpper(code)]
	return ok
}

// Codes lists the supported currency codes, sorted.
func (c *Converter) Codes() []string {
	out := make([]string, 0, len(c.rates))
	for code := range c.rates {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
