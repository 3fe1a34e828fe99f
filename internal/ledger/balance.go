// Package ledger turns journal vouchers into a trial balance.  Everything
// here is a pure function of its arguments: nothing is cached between calls
// and nothing is written back, so a report always reflects the voucher set
// it was handed.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// Epsilon absorbs rounding noise when deciding whether an amount is zero.
var Epsilon = decimal.New(1, -2)

// Balances maps an account code to its net amount, debit positive.
type Balances map[string]decimal.Decimal

// ParseAmount converts a user-entered amount.  Blank or malformed input is
// treated as zero so that a bad line never aborts a report.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ComputeAccountBalances nets debit minus credit per known account.  Every
// known code starts at zero; lines against unknown codes are skipped.
func ComputeAccountBalances(vouchers []model.JournalVoucher, knownAccountCodes []string) Balances {
	balances := make(Balances, len(knownAccountCodes))
	for _, code := range knownAccountCodes {
		balances[code] = decimal.Zero
	}
	for _, v := range vouchers {
		for _, line := range v.Lines {
			cur, ok := balances[line.Account]
			if !ok {
				continue
			}
			balances[line.Account] = cur.Add(ParseAmount(line.Debit)).Sub(ParseAmount(line.Credit))
		}
	}
	return balances
}

// ClassifyBalance splits a net balance into a debit or credit column using
// the normal-balance convention of the account type.  A zero balance lands
// in the normal column: debit for Asset, Expense, Cost of Goods Sold and
// unrecognised types, credit for Liability, Equity and Revenue.
func ClassifyBalance(accountType model.AccountType, netBalance decimal.Decimal) (debit, credit decimal.Decimal) {
	if creditNormal(accountType) {
		if netBalance.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, netBalance.Neg()
		}
		return netBalance, decimal.Zero
	}
	if netBalance.GreaterThanOrEqual(decimal.Zero) {
		return netBalance, decimal.Zero
	}
	return decimal.Zero, netBalance.Neg()
}

func creditNormal(t model.AccountType) bool {
	switch t {
	case model.Liability, model.Equity, model.Revenue:
		return true
	}
	return false
}

// significant reports whether |d| exceeds Epsilon.
func significant(d decimal.Decimal) bool { return d.Abs().GreaterThan(Epsilon) }
