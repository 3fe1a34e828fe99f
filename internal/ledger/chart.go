package ledger

import "github.com/zenithbooks/zenithbooks/internal/model"

var defaultChart = []model.Account{
	{Code: "1010", Name: "Cash on Hand", Type: model.Asset},
	{Code: "1020", Name: "Bank Accounts", Type: model.Asset},
	{Code: "1210", Name: "Accounts Receivable", Type: model.Asset},
	{Code: "1310", Name: "Inventory", Type: model.Asset},
	{Code: "1410", Name: "GST Input Credit", Type: model.Asset},
	{Code: "1420", Name: "TDS Receivable", Type: model.Asset},
	{Code: "1510", Name: "Furniture and Fixtures", Type: model.Asset},
	{Code: "2010", Name: "Accounts Payable", Type: model.Liability},
	{Code: "2110", Name: "GST Payable", Type: model.Liability},
	{Code: "2120", Name: "TDS Payable", Type: model.Liability},
	{Code: "2210", Name: "Secured Loans", Type: model.Liability},
	{Code: "3010", Name: "Capital Account", Type: model.Equity},
	{Code: "3020", Name: "Retained Earnings", Type: model.Equity},
	{Code: "4010", Name: "Sales Revenue", Type: model.Revenue},
	{Code: "4020", Name: "Service Revenue", Type: model.Revenue},
	{Code: "4110", Name: "Interest Income", Type: model.Revenue},
	{Code: "5010", Name: "Purchases", Type: model.CostOfGoodsSold},
	{Code: "5020", Name: "Freight Inward", Type: model.CostOfGoodsSold},
	{Code: "6010", Name: "Rent Expense", Type: model.Expense},
	{Code: "6020", Name: "Salaries and Wages", Type: model.Expense},
	{Code: "6030", Name: "Professional Fees", Type: model.Expense},
	{Code: "6040", Name: "Bank Charges", Type: model.Expense},
}

// DefaultChart returns a copy of the static chart of accounts.
func DefaultChart() []model.Account {
	out := make([]model.Account, len(defaultChart))
	copy(out, defaultChart)
	return out
}

// Registry merges the account sources used for classification.  Customers
// become Asset accounts and vendors Liability accounts, each keyed by the
// party id.  The first occurrence of a code wins.
func Registry(chart, custom []model.Account, customers, vendors []model.Party) []model.Account {
	out := make([]model.Account, 0, len(chart)+len(custom)+len(customers)+len(vendors))
	seen := make(map[string]struct{}, cap(out))
	add := func(a model.Account) {
		if a.Code == "" {
			return
		}
		if _, ok := seen[a.Code]; ok {
			return
		}
		seen[a.Code] = struct{}{}
		out = append(out, a)
	}
	for _, a := range chart {
		add(a)
	}
	for _, a := range custom {
		add(a)
	}
	for _, p := range customers {
		add(model.Account{Code: p.ID, Name: p.Name, Type: model.Asset})
	}
	for _, p := range vendors {
		add(model.Account{Code: p.ID, Name: p.Name, Type: model.Liability})
	}
	return out
}
