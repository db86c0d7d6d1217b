package ledger

import (
	"github.com/cloudflare/ahocorasick"
)

// categoryRule binds a subcategory keyword to the kind it implies. Rules are
// evaluated first-match-wins in declaration order, so "direct debit" resolves
// as an outgoing before the shorter "debit" keyword can claim it as a
// purchase.
type categoryRule struct {
	Keyword string
	Kind    Kind
}

// classificationRules is the closed rule set for Barclays-style statement
// subcategories. Matching is case-insensitive substring matching against the
// effective category.
var classificationRules = []categoryRule{
	{"counter credit", KindIncome},
	{"direct debit", KindOutgoing},
	{"bill payment", KindOutgoing},
	{"standing order", KindOutgoing},
	{"recurring monthly payment", KindOutgoing},
	{"credit payment", KindOutgoing},
	{"card purchase", KindPurchase},
	{"debit", KindPurchase},
}

// Classifier maps raw transactions to categorized transactions. It matches
// every rule keyword in a single pass using an Aho-Corasick automaton and
// resolves ties by rule order. The zero value is not usable; construct with
// NewClassifier.
type Classifier struct {
	matcher *ahocorasick.Matcher
	rules   []categoryRule
}

// NewClassifier builds the keyword automaton over the fixed rule set.
func NewClassifier() *Classifier {
	patterns := make([][]byte, len(classificationRules))
	for i, r := range classificationRules {
		patterns[i] = []byte(r.Keyword)
	}
	return &Classifier{
		matcher: ahocorasick.NewMatcher(patterns),
		rules:   classificationRules,
	}
}

// Classify resolves a raw transaction to exactly one kind. An empty or
// unmatched effective category yields KindUnclassified; that is a valid
// result, not an error. The mapping is pure: identical (subcategory,
// override) pairs always produce the identical kind.
func (c *Classifier) Classify(tx RawTransaction) CategorizedTransaction {
	out := CategorizedTransaction{
		ID:          tx.ID,
		Kind:        KindUnclassified,
		Date:        tx.Date,
		AmountMinor: tx.AmountMinor,
		Memo:        tx.Memo,
	}

	effective := tx.EffectiveCategory()
	if effective == "" {
		return out
	}

	hits := c.matcher.Match([]byte(effective))
	if len(hits) == 0 {
		return out
	}

	// First-match-wins: the winning rule is the earliest declared one among
	// all keywords present in the string.
	best := len(c.rules)
	for _, idx := range hits {
		if idx >= 0 && idx < best {
			best = idx
		}
	}
	if best == len(c.rules) {
		return out
	}

	out.Kind = c.rules[best].Kind
	out.Counterparty = ExtractCounterparty(tx.Memo)
	return out
}

// ClassifyAll classifies a batch of raw transactions, preserving input order.
func (c *Classifier) ClassifyAll(txs []RawTransaction) []CategorizedTransaction {
	result := make([]CategorizedTransaction, len(txs))
	for i, tx := range txs {
		result[i] = c.Classify(tx)
	}
	return result
}
