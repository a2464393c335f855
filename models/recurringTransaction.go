package models

import "github.com/shopspring/decimal"

// RecurringTransaction is one recurring charge line on a lease. The rent
// charge is identified by its GL account id against the account's
// configured rent GL mapping.
type RecurringTransaction struct {
	TransactionId string          `json:"transaction_id"`
	LeaseId       string          `json:"lease_id"`
	GlAccountId   string          `json:"gl_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Frequency     string          `json:"frequency"`
	Memo          string          `json:"memo,omitempty"`
}
