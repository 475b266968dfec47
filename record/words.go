package record

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	frUnits = [...]string{
		"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
		"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
		"dix-sept", "dix-huit", "dix-neuf",
	}
	frTens = [...]string{
		"", "", "vingt", "trente", "quarante", "cinquante", "soixante",
	}
	thousand = decimal.NewFromInt(1000)
)

// InWords spells the amount in French as dinars and millimes, the way the
// invoice footer states the total:
//
//	1250.5 → "Mille deux cent cinquante dinars et cinq cents millimes"
//
// Millimes are omitted when zero.
func (a Amount) InWords() string {
	d := a.Decimal.Round(3)
	neg := d.IsNegative()
	d = d.Abs()
	whole := d.Truncate(0)
	millimes := d.Sub(whole).Mul(thousand).IntPart()

	text := SpellFrench(whole.IntPart()) + " dinars"
	if millimes > 0 {
		text += " et " + SpellFrench(millimes) + " millimes"
	}
	if neg {
		text = "moins " + text
	}
	return capitalize(text)
}

// SpellFrench returns the French cardinal for n using traditional spelling.
func SpellFrench(n int64) string {
	if n < 0 {
		return "moins " + SpellFrench(-n)
	}
	if n == 0 {
		return frUnits[0]
	}
	var parts []string
	for _, scale := range []struct {
		value    int64
		singular string
		plural   string
	}{
		{1_000_000_000, "milliard", "milliards"},
		{1_000_000, "million", "millions"},
	} {
		if q := n / scale.value; q > 0 {
			if q == 1 {
				parts = append(parts, "un "+scale.singular)
			} else {
				parts = append(parts, SpellFrench(q)+" "+scale.plural)
			}
			n %= scale.value
		}
	}
	if q := n / 1000; q > 0 {
		switch q {
		case 1:
			parts = append(parts, "mille")
		default:
			// Cent and vingt lose their plural s before mille.
			parts = append(parts, below1000(q, false)+" mille")
		}
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, below1000(n, true))
	}
	return strings.Join(parts, " ")
}

// below1000 spells 1..999. final is false when the number is followed by a
// multiplier, which drops the plural s of cents and quatre-vingts.
func below1000(n int64, final bool) string {
	h, rest := n/100, n%100
	var out string
	switch {
	case h == 1:
		out = "cent"
	case h > 1:
		out = frUnits[h] + " cent"
		if rest == 0 && final {
			out += "s"
		}
	}
	if rest == 0 {
		return out
	}
	tail := below100(rest, final)
	if out == "" {
		return tail
	}
	return out + " " + tail
}

func below100(n int64, final bool) string {
	if n < 20 {
		return frUnits[n]
	}
	t, u := n/10, n%10
	switch {
	case t == 7 || t == 9:
		// soixante-dix and quatre-vingt-dix are built on the teens.
		base := "soixante"
		if t == 9 {
			base = "quatre-vingt"
		}
		if t == 7 && u == 1 {
			return base + " et onze"
		}
		return base + "-" + frUnits[10+u]
	case t == 8:
		if u == 0 {
			if final {
				return "quatre-vingts"
			}
			return "quatre-vingt"
		}
		return "quatre-vingt-" + frUnits[u]
	}
	switch u {
	case 0:
		return frTens[t]
	case 1:
		return frTens[t] + " et un"
	default:
		return frTens[t] + "-" + frUnits[u]
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
