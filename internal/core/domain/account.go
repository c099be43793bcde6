package domain

import "time"

// Account is a ledger entity with a credit limit and current balance,
// both denominated in minor currency units (cents). Accounts are
// provisioned once at startup; only the balance changes afterwards.
type Account struct {
	ID        int       `json:"id"`
	Limit     int64     `json:"limit"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanDebit reports whether debiting amount keeps the balance at or above
// -Limit. This is the limit invariant: balance >= -limit at all times.
func (a *Account) CanDebit(amount int64) bool {
	return a.Balance-amount >= -a.Limit
}
