package recipe

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuantity parses an ingredient quantity. Accepted forms are decimals
// ("2", "0.5"), fractions ("1/2") and mixed numbers ("1 1/2"). The result is
// always finite and greater than zero.
func ParseQuantity(text string) (float64, error) {
	fields := strings.Fields(text)

	var v float64
	var ok bool
	switch len(fields) {
	case 1:
		v, ok = parseNumber(fields[0])
	case 2:
		whole, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil || !strings.Contains(fields[1], "/") {
			break
		}
		var frac float64
		if frac, ok = parseFraction(fields[1]); ok {
			v = float64(whole) + frac
		}
	}

	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, &MalformedQuantityError{Text: text}
	}
	return v, nil
}

func parseNumber(s string) (float64, bool) {
	if strings.Contains(s, "/") {
		return parseFraction(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func parseFraction(s string) (float64, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(num, 10, 32)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseUint(den, 10, 32)
	if err != nil || d == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

// FormatQuantity renders q in the shortest decimal form that parses back to
// the same value.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
