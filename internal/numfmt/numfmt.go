// Package numfmt renders numbers against the small set of format codes
// the TEXT() function accepts: plain integer, fixed-decimal, and
// thousands-grouped variants of both.
//
// What: Format(f float64, code string) applies one format code to one
// number.
// How: golang.org/x/text/message.Printer does the locale-aware thousands
// grouping; this package only has to recognize which of the four shapes
// a format code asks for and how many decimal places it wants.
// Why: hand-rolling digit-grouping with strconv and string surgery is
// exactly the kind of locale-sensitive text formatting golang.org/x/text
// exists for; reaching for strconv here would be reinventing a library
// already in the dependency graph.
package numfmt

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders f according to code, a simplified subset of spreadsheet
// number-format codes:
//
//	""         -> shortest round-trippable representation
//	"0"        -> integer, rounded
//	"0.00"     -> fixed decimals (digit count taken from the code)
//	"#,##0"    -> integer with thousands separators
//	"#,##0.00" -> thousands separators plus fixed decimals
func Format(f float64, code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	grouped := strings.Contains(code, ",")
	decimals := decimalPlaces(code)

	if grouped {
		if decimals > 0 {
			return printer.Sprintf("%.*f", decimals, f)
		}
		return printer.Sprintf("%d", int64(roundHalfAway(f, 0)))
	}
	if decimals > 0 {
		return fmt.Sprintf("%.*f", decimals, f)
	}
	return strconv.FormatInt(int64(roundHalfAway(f, 0)), 10)
}

func decimalPlaces(code string) int {
	dot := strings.IndexByte(code, '.')
	if dot < 0 {
		return 0
	}
	n := 0
	for _, r := range code[dot+1:] {
		if r == '0' || r == '#' {
			n++
			continue
		}
		break
	}
	return n
}

func roundHalfAway(f float64, decimals int) float64 {
	mult := 1.0
	for i := 0; i < decimals; i++ {
		mult *= 10
	}
	if f >= 0 {
		return float64(int64(f*mult+0.5)) / mult
	}
	return float64(int64(f*mult-0.5)) / mult
}
