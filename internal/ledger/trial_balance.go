package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

const (
	SuspenseCode = "SUSPENSE"
	SuspenseName = "Suspense Account"
)

// Row is one line of the trial balance.
type Row struct {
	Account string          `json:"account"`
	Code    string          `json:"code"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// Mismatch is the outcome of comparing trial balance totals.
type Mismatch struct {
	IsMismatched bool            `json:"is_mismatched"`
	Difference   decimal.Decimal `json:"difference"`
}

// BuildTrialBalance emits one row per account whose classified debit or
// credit is significant, in the order the accounts are given.
func BuildTrialBalance(accounts []model.Account, balances Balances) []Row {
	rows := make([]Row, 0, len(accounts))
	for _, a := range accounts {
		net, ok := balances[a.Code]
		if !ok {
			continue
		}
		debit, credit := ClassifyBalance(a.Type, net)
		if !significant(debit) && !significant(credit) {
			continue
		}
		rows = append(rows, Row{Account: a.Name, Code: a.Code, Debit: debit, Credit: credit})
	}
	return rows
}

// Totals sums the debit and credit columns.
func Totals(rows []Row) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, r := range rows {
		debit = debit.Add(r.Debit)
		credit = credit.Add(r.Credit)
	}
	return debit, credit
}

// DetectMismatch reports total debit minus total credit and whether that
// difference is significant.
func DetectMismatch(rows []Row) Mismatch {
	debit, credit := Totals(rows)
	diff := debit.Sub(credit)
	return Mismatch{IsMismatched: significant(diff), Difference: diff}
}

// BuildSuspenseEntry returns the display-only row that offsets difference.
// Excess debit is balanced with a suspense credit and vice versa.
func BuildSuspenseEntry(difference decimal.Decimal) Row {
	row := Row{Account: SuspenseName, Code: SuspenseCode, Debit: decimal.Zero, Credit: decimal.Zero}
	if difference.GreaterThan(decimal.Zero) {
		row.Credit = difference
	} else {
		row.Debit = difference.Neg()
	}
	return row
}
