package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/riostats/internal/catalog"
)

// Space grouping ("2 897", also with no-break or narrow spaces) is accepted
// in both formats.
var (
	integerUS = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d{1,3}(?:[ \x{00a0}\x{202f}]\d{3})+|\d+`)
	integerEU = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+|\d{1,3}(?:[ \x{00a0}\x{202f}]\d{3})+|\d+`)
	decimalUS = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d{1,3}(?:[ \x{00a0}\x{202f}]\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
	decimalEU = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+(?:,\d+)?|\d{1,3}(?:[ \x{00a0}\x{202f}]\d{3})+(?:,\d+)?|\d+(?:,\d+)?`)
)

// Separators that group digits in every locale we see.
var spaceGroupers = strings.NewReplacer(" ", "", "\u00a0", "", "\u2009", "", "\u202f", "", "'", "")

func integerPattern(f catalog.NumberFormat) *regexp.Regexp {
	if f == catalog.FormatEU {
		return integerEU
	}
	return integerUS
}

func decimalPattern(f catalog.NumberFormat) *regexp.Regexp {
	if f == catalog.FormatEU {
		return decimalEU
	}
	return decimalUS
}

func stripGrouping(raw string, f catalog.NumberFormat) string {
	s := spaceGroupers.Replace(strings.TrimSpace(raw))
	if f == catalog.FormatEU {
		return strings.ReplaceAll(s, ".", "")
	}
	return strings.ReplaceAll(s, ",", "")
}

// parseInteger accepts raw only if, with grouping separators removed, it is
// entirely digits.
func parseInteger(raw string, f catalog.NumberFormat) (int64, error) {
	s := stripGrouping(raw, f)
	if s == "" || !isDigits(s) {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return strconv.ParseInt(s, 10, 64)
}

// parseDecimal accepts digits with at most one decimal separator.
func parseDecimal(raw string, f catalog.NumberFormat) (float64, error) {
	s := stripGrouping(raw, f)
	if f == catalog.FormatEU {
		s = strings.Replace(s, ",", ".", 1)
	}
	whole, frac, hasPoint := strings.Cut(s, ".")
	if !isDigits(whole) || (hasPoint && !isDigits(frac)) {
		return 0, fmt.Errorf("not a decimal: %q", raw)
	}
	return strconv.ParseFloat(s, 64)
}

// digitsOnly drops every character that is not an ASCII digit.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
