package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/ledger"
	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/repository"
)

var accountTypes = map[model.AccountType]bool{
	model.Asset:           true,
	model.Liability:       true,
	model.Equity:          true,
	model.Revenue:         true,
	model.Expense:         true,
	model.CostOfGoodsSold: true,
}

// ChartOfAccounts returns the static chart.  It is the same for every
// caller, which is what makes it safe to cache.
func ChartOfAccounts(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": ledger.DefaultChart()})
}

func (h *LedgerHandler) CreateAccount(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var a model.Account
	if err := c.Bind(&a); err != nil {
		return badRequest(c, "invalid body")
	}
	a.Code = strings.TrimSpace(a.Code)
	a.Name = strings.TrimSpace(a.Name)
	if a.Code == "" || a.Name == "" {
		return badRequest(c, "code and name required")
	}
	if !accountTypes[a.Type] {
		return badRequest(c, "unknown account type")
	}
	for _, std := range ledger.DefaultChart() {
		if std.Code == a.Code {
			return c.JSON(http.StatusConflict, echo.Map{"error": "code is used by the standard chart"})
		}
	}
	if err := h.Accounts.CreateAccount(c.Request().Context(), uid, a); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// ListAccounts returns the caller's full registry: standard chart, custom
// accounts and party accounts.
func (h *LedgerHandler) ListAccounts(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	accounts, err := h.registry(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"items": accounts})
}

type partyReq struct {
	Name string `json:"name"`
}

type partyResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateParty returns a handler adding a customer or vendor.  The new id
// doubles as the party's ledger account code.
func (h *LedgerHandler) CreateParty(kind repository.PartyKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := ownerID(c)
		if err != nil {
			return respondError(c, err)
		}
		var req partyReq
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return badRequest(c, "name required")
		}
		p := model.Party{ID: uuid.NewString(), OwnerID: uid, Name: name}
		if err := h.Accounts.CreateParty(c.Request().Context(), kind, p); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusCreated, partyResp{ID: p.ID, Name: p.Name})
	}
}

func (h *LedgerHandler) ListParties(kind repository.PartyKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := ownerID(c)
		if err != nil {
			return respondError(c, err)
		}
		ps, err := h.Accounts.ListParties(c.Request().Context(), kind, uid)
		if err != nil {
			return err
		}
		out := make([]partyResp, 0, len(ps))
		for _, p := range ps {
			out = append(out, partyResp{ID: p.ID, Name: p.Name})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": out})
	}
}
