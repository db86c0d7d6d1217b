// Package ledger holds the raw transaction model and the rules that decide
// what a transaction is: income, a scheduled outgoing, or a purchase.
package ledger

import (
	"strings"
	"time"
)

// RawTransaction is an unmodified record as received from statement
// ingestion. Amount is always a non-negative magnitude; the sign is implied
// by the classified kind, not stored.
type RawTransaction struct {
	ID                  int64      `json:"id"`
	TransactionNumber   *string    `json:"transaction_number,omitempty"`
	Date                time.Time  `json:"transaction_date"`
	Account             string     `json:"account"`
	AmountMinor         int64      `json:"amount_minor"`
	Subcategory         string     `json:"subcategory"`
	OverrideSubcategory *string    `json:"override_subcategory,omitempty"`
	Memo                string     `json:"memo"`
	CreatedAt           time.Time  `json:"created_at"`
}

// EffectiveCategory returns the category string the classifier matches
// against: the user override when set, otherwise the source subcategory,
// lower-cased. Recomputed on every call so an override change takes effect
// on the next classification pass.
func (t RawTransaction) EffectiveCategory() string {
	if t.OverrideSubcategory != nil && *t.OverrideSubcategory != "" {
		return strings.ToLower(*t.OverrideSubcategory)
	}
	return strings.ToLower(t.Subcategory)
}

// Kind is the classified category of a transaction. A categorized
// transaction belongs to exactly one kind; KindUnclassified marks records
// excluded from all downstream totals.
type Kind string

const (
	KindIncome       Kind = "income"
	KindOutgoing     Kind = "outgoing"
	KindPurchase     Kind = "purchase"
	KindUnclassified Kind = "unclassified"
)

// CategorizedTransaction is the classifier's output: a raw transaction with
// its kind resolved and a counterparty attributed. It is derived on demand
// and never persisted.
type CategorizedTransaction struct {
	ID           int64     `json:"id"`
	Kind         Kind      `json:"kind"`
	Date         time.Time `json:"transaction_date"`
	AmountMinor  int64     `json:"amount_minor"`
	Counterparty string    `json:"counterparty"`
	Memo         string    `json:"memo"`
}

// DayOfMonth returns the calendar day (1-31) the transaction posted on.
func (t CategorizedTransaction) DayOfMonth() int {
	return t.Date.Day()
}

// Description resolves the display label for a transaction: the attributed
// counterparty when present, otherwise the memo.
func (t CategorizedTransaction) Description() string {
	if t.Counterparty != "" {
		return t.Counterparty
	}
	return t.Memo
}

// Split partitions categorized transactions into the three live buckets,
// dropping unclassified records.
func Split(txs []CategorizedTransaction) (income, outgoings, purchases []CategorizedTransaction) {
	for _, tx := range txs {
		switch tx.Kind {
		case KindIncome:
			income = append(income, tx)
		case KindOutgoing:
			outgoings = append(outgoings, tx)
		case KindPurchase:
			purchases = append(purchases, tx)
		}
	}
	return income, outgoings, purchases
}
