package internal

import (
	"os"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// symbolOverrides provides custom symbols where x/text defaults aren't ideal
var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"ISK": "kr",
}

// Formatter renders amounts as the currency symbol followed by the number
// with exactly two fraction digits, grouped for the locale.
type Formatter struct {
	Symbol  string
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter returns a Formatter for symbol using tag's number format.
func NewFormatter(symbol string, tag language.Tag) Formatter {
	if tag == language.Und {
		tag = language.English
	}
	return Formatter{
		Symbol:  symbol,
		tag:     tag,
		printer: message.NewPrinter(tag),
	}
}

// Format formats a single amount, e.g. "$1,234.50".
func (f Formatter) Format(amount float64) string {
	return f.Symbol + f.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}

// WithSymbol returns a copy of f using another symbol.
func (f Formatter) WithSymbol(symbol string) Formatter {
	f.Symbol = symbol
	return f
}

// ResolveSymbol turns an ISO 4217 code ("EUR", "sek") into its narrow
// symbol. Anything else is returned unchanged, so raw symbols like "€" or
// "CHF " pass straight through.
func ResolveSymbol(input string) string {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) != 3 {
		return input
	}
	code := strings.ToUpper(trimmed)
	if sym, ok := symbolOverrides[code]; ok {
		return sym
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return input
	}
	return message.NewPrinter(language.English).Sprint(currency.NarrowSymbol(unit))
}

// ResolveLocale returns the language tag used for number formatting. An
// explicit name (from config) wins, then the OS locale, then English.
func ResolveLocale(name string) language.Tag {
	if name != "" {
		if tag, ok := parseLocaleTag(name); ok {
			return tag
		}
	}
	if tag, ok := parseLocaleTag(systemLocale()); ok {
		return tag
	}
	return language.English
}

// parseLocaleTag converts POSIX-style locale strings to a language tag.
// Examples: "sv_SE.UTF-8" -> sv-SE, "de_DE@euro" -> de-DE, "en-US" -> en-US
func parseLocaleTag(locale string) (language.Tag, bool) {
	base := locale
	if idx := strings.Index(base, "."); idx != -1 {
		base = base[:idx]
	}
	if idx := strings.Index(base, "@"); idx != -1 {
		base = base[:idx]
	}
	if base == "" {
		return language.Und, false
	}

	tag, err := language.Parse(strings.Replace(base, "_", "-", 1))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

func localeFromEnv(vars ...string) string {
	for _, name := range vars {
		v := os.Getenv(name)
		if v != "" && v != "C" && v != "POSIX" && v != "C.UTF-8" {
			return v
		}
	}
	return ""
}
