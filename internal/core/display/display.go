// Package display renders calculator values for presentation.
package display

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrorText is shown for any value that is not a finite number.
const ErrorText = "Error"

const (
	// maxPlain is the largest magnitude rendered without an exponent.
	maxPlain = 999_999_999
	// minPlain is the smallest non-zero magnitude rendered without an exponent.
	minPlain = 0.0000001
	// mantissaDigits is the fixed number of fractional mantissa digits in
	// exponential notation.
	mantissaDigits = 4
)

// decimalNumeral is an optional minus sign, digits with at most one point and
// an optional decimal exponent. It excludes the hex, underscore and padded
// forms strconv.ParseFloat also accepts.
var decimalNumeral = regexp.MustCompile(`^-?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// groupingTag fixes the separator convention; the calculator is not localized.
var groupingTag = language.English

// Render formats a numeric display string. It never mutates engine state.
//
// Values that are not finite numbers render as ErrorText. Very large or very
// small magnitudes use exponential notation with four mantissa digits
// ("5.0000e-8"). Everything else keeps its digits, with the integer part
// grouped by thousands and the fractional part, including a bare trailing
// point from in-progress entry, left untouched.
func Render(value string) string {
	if value == ErrorText || !decimalNumeral.MatchString(value) {
		return ErrorText
	}
	number, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return ErrorText
	}

	magnitude := math.Abs(number)
	if magnitude > maxPlain || (magnitude < minPlain && number != 0) {
		return Exponential(number)
	}

	if !isPlainNumeral(value) {
		value = strconv.FormatFloat(number, 'f', -1, 64)
	}
	return groupThousands(value)
}

// Exponential renders a number as d.dddde±x.
func Exponential(number float64) string {
	formatted := strconv.FormatFloat(number, 'e', mantissaDigits, 64)
	mantissa, exponent, ok := strings.Cut(formatted, "e")
	if !ok || exponent == "" {
		return formatted
	}
	sign := exponent[:1]
	digits := strings.TrimLeft(exponent[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

func groupThousands(value string) string {
	sign := ""
	if strings.HasPrefix(value, "-") {
		sign = "-"
		value = value[1:]
	}

	integer, fraction, hasPoint := strings.Cut(value, ".")
	if integer != "" {
		n, err := strconv.ParseUint(integer, 10, 64)
		if err == nil {
			integer = message.NewPrinter(groupingTag).Sprintf("%d", n)
		}
	}

	if !hasPoint {
		return sign + integer
	}
	return sign + integer + "." + fraction
}

// isPlainNumeral reports whether value is an optional minus sign followed by
// digits and at most one decimal point.
func isPlainNumeral(value string) bool {
	value = strings.TrimPrefix(value, "-")
	if value == "" {
		return false
	}
	seenPoint := false
	seenDigit := false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenPoint:
			seenPoint = true
		default:
			return false
		}
	}
	return seenDigit
}
