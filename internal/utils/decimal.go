package utils

import (
	"errors"
	"regexp"

	"github.com/shopspring/decimal"
)

// Prices travel as decimal text: digits, optionally a dot and one or two
// fractional digits. Stored verbatim after normalization, never as float.
var priceFormat = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ErrInvalidPrice is returned for price strings outside the accepted format.
var ErrInvalidPrice = errors.New("price must be a decimal like 12 or 12.34")

// NormalizePrice validates a price string and returns its canonical form
// (no leading zeros, trailing fraction preserved as given by decimal).
func NormalizePrice(value string) (string, error) {
	if !priceFormat.MatchString(value) {
		return "", ErrInvalidPrice
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return "", ErrInvalidPrice
	}
	if d.IsNegative() {
		return "", ErrInvalidPrice
	}

	return d.String(), nil
}
