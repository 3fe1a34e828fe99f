package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/repository"
)

// VoucherStore is implemented by repository.VoucherRepo.
type VoucherStore interface {
	Create(ctx context.Context, v model.JournalVoucher) error
	ListByOwner(ctx context.Context, ownerID uint64, from, to time.Time) ([]model.JournalVoucher, error)
}

// AccountStore is implemented by repository.AccountRepo.
type AccountStore interface {
	CreateAccount(ctx context.Context, ownerID uint64, a model.Account) error
	ListAccounts(ctx context.Context, ownerID uint64) ([]model.Account, error)
	CreateParty(ctx context.Context, kind repository.PartyKind, p model.Party) error
	ListParties(ctx context.Context, kind repository.PartyKind, ownerID uint64) ([]model.Party, error)
}

// LedgerHandler serves vouchers, accounts and the trial balance report.
type LedgerHandler struct {
	Vouchers VoucherStore
	Accounts AccountStore
	Currency string
}

func NewLedgerHandler(vouchers VoucherStore, accounts AccountStore, currency string) *LedgerHandler {
	return &LedgerHandler{Vouchers: vouchers, Accounts: accounts, Currency: currency}
}

type voucherReq struct {
	Date       string              `json:"date"`
	Narration  string              `json:"narration"`
	CustomerID string              `json:"customer_id"`
	VendorID   string              `json:"vendor_id"`
	Lines      []model.VoucherLine `json:"lines"`
}

type voucherResp struct {
	ID         string              `json:"id"`
	Date       string              `json:"date"`
	Narration  string              `json:"narration"`
	CustomerID string              `json:"customer_id,omitempty"`
	VendorID   string              `json:"vendor_id,omitempty"`
	Lines      []model.VoucherLine `json:"lines"`
}

func toVoucherResp(v model.JournalVoucher) voucherResp {
	return voucherResp{ID: v.ID, Date: v.Date.Format(dateLayout), Narration: v.Narration,
		CustomerID: v.CustomerID, VendorID: v.VendorID, Lines: v.Lines}
}

// validAmount accepts blank or a plain decimal, optionally with thousands
// separators.
func validAmount(s string) bool {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return true
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}

// CreateVoucher stores a journal voucher as entered.  Debits and credits
// are not required to balance; the trial balance reports any difference.
func (h *LedgerHandler) CreateVoucher(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req voucherReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	if len(req.Lines) == 0 {
		return badRequest(c, "at least one line is required")
	}
	for i := range req.Lines {
		l := &req.Lines[i]
		l.Account = strings.TrimSpace(l.Account)
		if l.Account == "" {
			return badRequest(c, "every line needs an account")
		}
		if !validAmount(l.Debit) || !validAmount(l.Credit) {
			return badRequest(c, "debit and credit must be numbers")
		}
	}

	v := model.JournalVoucher{
		ID:         uuid.NewString(),
		OwnerID:    uid,
		Date:       date,
		Narration:  strings.TrimSpace(req.Narration),
		CustomerID: strings.TrimSpace(req.CustomerID),
		VendorID:   strings.TrimSpace(req.VendorID),
		Lines:      req.Lines,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Vouchers.Create(c.Request().Context(), v); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toVoucherResp(v))
}

// ListVouchers returns the caller's vouchers, optionally bounded by from
// and to.
func (h *LedgerHandler) ListVouchers(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	from, to, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	vs, err := h.Vouchers.ListByOwner(c.Request().Context(), uid, from, to)
	if err != nil {
		return err
	}
	out := make([]voucherResp, 0, len(vs))
	for _, v := range vs {
		out = append(out, toVoucherResp(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
