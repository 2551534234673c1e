package util

import "regexp"

// plainDecimal matches amounts written without exponent, with bounded digits
// on both sides of the point.
var plainDecimal = regexp.MustCompile(`^[+-]?(\d{1,32}(\.\d{0,32})?|\.\d{1,32})$`)

// IsPlainDecimal reports whether value is a plain decimal literal such as
// "-12.50". Exponent forms like "1e-9" are rejected because rounding them
// rescales by the exponent.
func IsPlainDecimal(value string) bool {
	return plainDecimal.MatchString(value)
}
