package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// Report is a reconciled trial balance.  Suspense is set only when the
// voucher set does not balance; it is never posted anywhere.
type Report struct {
	Rows        []Row           `json:"rows"`
	Suspense    *Row            `json:"suspense,omitempty"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Mismatch    Mismatch        `json:"mismatch"`
}

// Reconcile runs the full pipeline: balances, classified rows, mismatch
// check and, when needed, a suspense row.  Totals include the suspense row.
func Reconcile(vouchers []model.JournalVoucher, accounts []model.Account) Report {
	codes := make([]string, 0, len(accounts))
	for _, a := range accounts {
		codes = append(codes, a.Code)
	}
	rows := BuildTrialBalance(accounts, ComputeAccountBalances(vouchers, codes))

	rep := Report{Rows: rows, Mismatch: DetectMismatch(rows)}
	all := rows
	if rep.Mismatch.IsMismatched {
		s := BuildSuspenseEntry(rep.Mismatch.Difference)
		rep.Suspense = &s
		all = append(append(make([]Row, 0, len(rows)+1), rows...), s)
	}
	rep.TotalDebit, rep.TotalCredit = Totals(all)
	return rep
}
