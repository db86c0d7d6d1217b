// Package schedule manages the user-curated list of scheduled outgoings:
// recurring bills tracked by day-of-month rather than derived from statement
// history.
package schedule

import "time"

// ScheduledOutgoing is a user-managed recurring bill.
type ScheduledOutgoing struct {
	ID          int64     `json:"id"`
	DayOfMonth  int       `json:"day_of_month"`
	AmountMinor int64     `json:"amount_minor"`
	Merchant    string    `json:"merchant"`
	Memo        string    `json:"memo"`
	Subcategory string    `json:"subcategory"`
	Account     string    `json:"account"`
	CreatedAt   time.Time `json:"created_at"`
}

// Defaults applied to entries created without explicit values.
const (
	DefaultSubcategory = "Direct Debit"
	DefaultAccount     = "Scheduled Outgoing"
)

// NewOutgoing describes an entry to create. Zero-valued Subcategory and
// Account fall back to the defaults.
type NewOutgoing struct {
	DayOfMonth  int    `json:"day_of_month"`
	AmountMinor int64  `json:"amount_minor"`
	Merchant    string `json:"merchant"`
	Memo        string `json:"memo"`
	Subcategory string `json:"subcategory"`
	Account     string `json:"account"`
}

// Update describes an edit to an existing entry. Nil fields are left
// unchanged.
type Update struct {
	DayOfMonth  *int    `json:"day_of_month,omitempty"`
	AmountMinor *int64  `json:"amount_minor,omitempty"`
	Merchant    *string `json:"merchant,omitempty"`
	Memo        *string `json:"memo,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
	Account     *string `json:"account,omitempty"`
}
