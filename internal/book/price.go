package book

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Price is a fixed-point value scaled by PriceScale, giving six decimal
// digits of precision in a uint64.
type Price = uint64

const (
	// PriceScale is the fixed-point multiplier.
	PriceScale Price = 1_000_000
	// priceDigits is the width of the fractional part, both on parse and
	// on render.
	priceDigits = 6
)

var ErrBadPrice = errors.New("malformed price")

// ParsePrice converts decimal text to a scaled Price. The fractional part
// is truncated, not rounded, beyond six digits; shorter fractions are
// right-padded with zeros. "5", "5.1" and "5.100000" all parse, the latter
// two to the same value.
func ParsePrice(text string) (Price, error) {
	whole, fraction, dotted := strings.Cut(text, ".")
	units, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadPrice, text)
	}
	if !dotted {
		return units * PriceScale, nil
	}

	if len(fraction) > priceDigits {
		fraction = fraction[:priceDigits]
	}
	subunits, err := strconv.ParseUint(fraction, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadPrice, text)
	}
	for i := len(fraction); i < priceDigits; i++ {
		subunits *= 10
	}
	return units*PriceScale + subunits, nil
}

// FormatPrice renders a Price as decimal text. The fraction is always
// zero-padded to six digits so that output round-trips through ParsePrice
// and compares correctly as text.
func FormatPrice(px Price) string {
	return fmt.Sprintf("%d.%06d", px/PriceScale, px%PriceScale)
}
