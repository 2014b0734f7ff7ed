package billing

import (
	"strings"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

const (
	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
	hundred  = 100
)

// AmountInWords spells a rupee amount using Indian grouping, e.g.
// 1234.56 -> "INR One Thousand Two Hundred Thirty Four Rupees and Fifty Six Paise Only".
func AmountInWords(amount float64) string {
	return PaiseInWords(ToPaise(amount))
}

// PaiseInWords is AmountInWords on an exact paise value.
func PaiseInWords(paise int64) string {
	if paise == 0 {
		return "Zero Rupees Only"
	}

	prefix := ""
	if paise < 0 {
		prefix = "Minus "
		paise = -paise
	}

	rupees, rem := paise/100, paise%100

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("INR ")
	if rupees > 0 {
		b.WriteString(spell(rupees))
		b.WriteString(" Rupees")
		if rem > 0 {
			b.WriteString(" and ")
		}
	}
	if rem > 0 {
		b.WriteString(spell(rem))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

// spell converts n > 0 to words. Amounts of a hundred crore and more spell
// the crore count recursively ("One Hundred Crore").
func spell(n int64) string {
	var parts []string
	if n >= crore {
		parts = append(parts, spell(n/crore), "Crore")
		n %= crore
	}
	if n >= lakh {
		parts = append(parts, belowHundred(n/lakh), "Lakh")
		n %= lakh
	}
	if n >= thousand {
		parts = append(parts, belowHundred(n/thousand), "Thousand")
		n %= thousand
	}
	if n >= hundred {
		parts = append(parts, ones[n/hundred], "Hundred")
		n %= hundred
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
