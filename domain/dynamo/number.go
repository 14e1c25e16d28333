package dynamo

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DynamoDB's declared numeric range: up to 38 significant digits, with
// positive magnitude between 1E-130 and 9.99...E+125.
const (
	maxSignificantDigits = 38
	maxMagnitudeExponent = 125
	minMagnitudeExponent = -130
)

// NumberValidationError distinguishes the malformed-number failure modes so
// the provider can surface each canonical message.
type NumberValidationError int

const (
	// NumberOK means the string is a valid DynamoDB number.
	NumberOK NumberValidationError = iota
	// NumberMalformed means the string is not a decimal literal at all.
	NumberMalformed
	// NumberTooPrecise means more than 38 significant digits.
	NumberTooPrecise
	// NumberOverflow means the magnitude exceeds 9.99...E+125.
	NumberOverflow
	// NumberUnderflow means a nonzero magnitude below 1E-130.
	NumberUnderflow
)

// ValidateNumber checks a number string against DynamoDB's numeric rules:
// no surrounding whitespace, a plain decimal literal with optional exponent,
// at most 38 significant digits, and magnitude within the representable
// range. Zero is always valid.
func ValidateNumber(s string) NumberValidationError {
	if s == "" || s != strings.TrimSpace(s) {
		return NumberMalformed
	}
	if !numberSyntaxOK(s) {
		return NumberMalformed
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return NumberMalformed
	}
	if d.IsZero() {
		return NumberOK
	}
	digits := significantDigits(d)
	if digits > maxSignificantDigits {
		return NumberTooPrecise
	}
	// Adjusted exponent of the most significant digit.
	adjusted := int(d.Exponent()) + digits - 1
	if adjusted > maxMagnitudeExponent {
		return NumberOverflow
	}
	if adjusted < minMagnitudeExponent {
		return NumberUnderflow
	}
	return NumberOK
}

// numberSyntaxOK matches [+-]?digits('.'digits)?([eE][+-]?digits)? with at
// least one digit in the mantissa. Infinity and NaN never match.
func numberSyntaxOK(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intDigits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			fracDigits++
		}
	}
	if intDigits+fracDigits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == len(s)
}

// significantDigits counts the digits of the stored coefficient with the
// sign and leading zeros stripped; trailing zeros are kept (1200 has two
// significant digits at exponent 2 once normalized, but DynamoDB counts the
// stored coefficient, so 1200 is four).
func significantDigits(d decimal.Decimal) int {
	coeff := d.Coefficient().String()
	coeff = strings.TrimPrefix(coeff, "-")
	coeff = strings.TrimLeft(coeff, "0")
	if coeff == "" {
		return 0
	}
	return len(coeff)
}
