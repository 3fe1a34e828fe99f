package router

import (
	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/handler"
	"github.com/zenithbooks/zenithbooks/internal/repository"
)

// RegisterLedger registers vouchers, accounts and reports.  The static
// chart of accounts is public and goes through cache; reports never do.
func RegisterLedger(e *echo.Echo, l *handler.LedgerHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/v1/chart-of-accounts", handler.ChartOfAccounts, cache)

	g := ownerGroup(e, jwtSecret)

	// ---- Vouchers ----
	g.POST("/vouchers", l.CreateVoucher)
	g.GET("/vouchers", l.ListVouchers)

	// ---- Accounts ----
	g.POST("/accounts", l.CreateAccount)
	g.GET("/accounts", l.ListAccounts)
	g.POST("/customers", l.CreateParty(repository.Customers))
	g.GET("/customers", l.ListParties(repository.Customers))
	g.POST("/vendors", l.CreateParty(repository.Vendors))
	g.GET("/vendors", l.ListParties(repository.Vendors))

	// ---- Reports ----
	g.GET("/reports/trial-balance", l.TrialBalance)
}
