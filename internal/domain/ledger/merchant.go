package ledger

import (
	"regexp"
	"strings"
)

// Statement memos carry trailing noise after the merchant name: a posting
// date ("ON 12 JAN ..."), foreign-amount annotations and bare currency codes.
var (
	postingDateSuffix  = regexp.MustCompile(`\s+ON\s+\d{2}\s+\w{3}.*$`)
	foreignAmountNoise = regexp.MustCompile(`(?i)\s+AMOUNT IN.*$`)
	currencyCodeSuffix = regexp.MustCompile(`\s+[A-Z]{3}$`)
)

// ExtractCounterparty derives a merchant or income-source name from a free
// text memo field. It strips known statement suffixes and trims whitespace;
// an empty memo yields an empty name.
func ExtractCounterparty(memo string) string {
	if memo == "" {
		return ""
	}

	cleaned := postingDateSuffix.ReplaceAllString(memo, "")
	cleaned = foreignAmountNoise.ReplaceAllString(cleaned, "")
	cleaned = currencyCodeSuffix.ReplaceAllString(cleaned, "")

	return strings.TrimSpace(cleaned)
}

// NormalizeName lower-cases and trims a counterparty or memo string for use
// as a grouping key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
