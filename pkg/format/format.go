// Package format renders prices, counts and dates the way the storefront
// shows them to shoppers (en-US conventions).
package format

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// InvalidDate is returned for date strings that cannot be parsed.
const InvalidDate = "Invalid Date"

var printer = message.NewPrinter(language.AmericanEnglish)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
	"INR": "₹",
}

var zeroDecimalCurrencies = map[string]bool{"JPY": true, "KRW": true}

// Currency formats amount in the given ISO currency, e.g. "$1,000.00" or
// "€99.99". An empty code means USD.
func Currency(amount float64, code string) string {
	code = strings.ToUpper(code)
	if code == "" {
		code = "USD"
	}
	digits := 2
	if zeroDecimalCurrencies[code] {
		digits = 0
	}

	d := decimal.NewFromFloat(amount).Round(int32(digits))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Float64()
	body := printer.Sprint(number.Decimal(f,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))

	if sym, ok := currencySymbols[code]; ok {
		return sign + sym + body
	}
	return sign + code + " " + body
}

// Number formats n with en-US grouping and up to three fraction digits.
func Number(n float64) string {
	return printer.Sprint(number.Decimal(n, number.MaxFractionDigits(3)))
}

// Percent formats value, given in percent units, with at most one fraction
// digit: 25 -> "25%", 12.5 -> "12.5%".
func Percent(value float64) string {
	return printer.Sprint(number.Percent(value/100,
		number.MinFractionDigits(0),
		number.MaxFractionDigits(1),
	))
}

// Date formats t as "January 15, 2025" in UTC.
func Date(t time.Time) string {
	return t.UTC().Format("January 2, 2006")
}

// ShortDate formats t as "Jan 15, 2025" in UTC.
func ShortDate(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006")
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps and plain dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateString parses s and formats it like Date, or returns InvalidDate.
func DateString(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return InvalidDate
	}
	return Date(t)
}

// Truncate shortens s to maxLen runes and appends "..." when it was longer.
func Truncate(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// CapitalizeFirst upper-cases the first letter and lower-cases the rest.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FileSize renders a byte count using 1024-based units, e.g. "1.5 KB".
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	i = min(i, len(sizeUnits)-1)

	v, _ := decimal.NewFromFloat(float64(bytes) / math.Pow(1024, float64(i))).Round(2).Float64()
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
