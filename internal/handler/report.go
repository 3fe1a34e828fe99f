package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/ledger"
	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/repository"
)

type trialBalanceResp struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	ledger.Report
	Currency  string          `json:"currency"`
	Formatted formattedTotals `json:"formatted"`
}

type formattedTotals struct {
	TotalDebit  string `json:"total_debit"`
	TotalCredit string `json:"total_credit"`
	Difference  string `json:"difference"`
}

// registry builds the caller's account lookup: the static chart, custom
// accounts, customers and vendors.
func (h *LedgerHandler) registry(ctx context.Context, uid uint64) ([]model.Account, error) {
	custom, err := h.Accounts.ListAccounts(ctx, uid)
	if err != nil {
		return nil, err
	}
	customers, err := h.Accounts.ListParties(ctx, repository.Customers, uid)
	if err != nil {
		return nil, err
	}
	vendors, err := h.Accounts.ListParties(ctx, repository.Vendors, uid)
	if err != nil {
		return nil, err
	}
	return ledger.Registry(ledger.DefaultChart(), custom, customers, vendors), nil
}

// TrialBalance reconciles the caller's vouchers in the requested period.
// It is computed on every request.
func (h *LedgerHandler) TrialBalance(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	from, to, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx := c.Request().Context()
	accounts, err := h.registry(ctx, uid)
	if err != nil {
		return err
	}
	vouchers, err := h.Vouchers.ListByOwner(ctx, uid, from, to)
	if err != nil {
		return err
	}

	rep := ledger.Reconcile(vouchers, accounts)
	resp := trialBalanceResp{
		Report:   rep,
		Currency: h.Currency,
		Formatted: formattedTotals{
			TotalDebit:  ledger.FormatAmount(rep.TotalDebit, h.Currency),
			TotalCredit: ledger.FormatAmount(rep.TotalCredit, h.Currency),
			Difference:  ledger.FormatAmount(rep.Mismatch.Difference, h.Currency),
		},
	}
	if !from.IsZero() {
		resp.From = from.Format(dateLayout)
	}
	if !to.IsZero() {
		resp.To = to.Format(dateLayout)
	}
	return c.JSON(http.StatusOK, resp)
}
