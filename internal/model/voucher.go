package model

import "time"

// JournalVoucher is a double-entry record.  Line amounts are kept as the
// strings the user entered; nothing guarantees debits equal credits.
type JournalVoucher struct {
	ID         string        // journal_vouchers.id
	OwnerID    uint64        // journal_vouchers.owner_id
	Date       time.Time     // journal_vouchers.voucher_date
	Narration  string        // journal_vouchers.narration
	CustomerID string        // journal_vouchers.customer_id (optional)
	VendorID   string        // journal_vouchers.vendor_id (optional)
	Lines      []VoucherLine // voucher_lines rows, in entry order
	CreatedAt  time.Time     // journal_vouchers.created_at
}

// VoucherLine is a single debit/credit posting against an account code.
type VoucherLine struct {
	Account string `json:"account"`
	Debit   string `json:"debit"`
	Credit  string `json:"credit"`
}

// AccountType is the accounting class of an account.
type AccountType string

const (
	Asset           AccountType = "Asset"
	Liability       AccountType = "Liability"
	Equity          AccountType = "Equity"
	Revenue         AccountType = "Revenue"
	Expense         AccountType = "Expense"
	CostOfGoodsSold AccountType = "Cost of Goods Sold"
)

// Account is a classification entry: chart of accounts rows as well as the
// synthetic accounts created for customers and vendors.
type Account struct {
	Code string      `json:"code"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// Party is a customer or vendor record; each one becomes a ledger account
// keyed by its ID.
type Party struct {
	ID      string // customers.id / vendors.id
	OwnerID uint64
	Name    string
}
