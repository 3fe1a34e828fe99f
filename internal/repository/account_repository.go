package repository

import (
	"context"
	"database/sql"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// PartyKind selects the customers or vendors table.
type PartyKind string

const (
	Customers PartyKind = "customers"
	Vendors   PartyKind = "vendors"
)

// AccountRepo stores the user-defined side of the chart of accounts:
// custom accounts plus customer and vendor records.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// CreateAccount adds a custom account.  A code the owner already uses
// yields ErrConflict.
func (r *AccountRepo) CreateAccount(ctx context.Context, ownerID uint64, a model.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (owner_id, code, name, account_type) VALUES (?, ?, ?, ?)`,
		ownerID, a.Code, a.Name, string(a.Type))
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

func (r *AccountRepo) ListAccounts(ctx context.Context, ownerID uint64) ([]model.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, account_type FROM accounts WHERE owner_id = ? ORDER BY code`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Account{}
	for rows.Next() {
		var (
			a   model.Account
			typ string
		)
		if err := rows.Scan(&a.Code, &a.Name, &typ); err != nil {
			return nil, err
		}
		a.Type = model.AccountType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateParty inserts a customer or vendor.
func (r *AccountRepo) CreateParty(ctx context.Context, kind PartyKind, p model.Party) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+partyTable(kind)+` (id, owner_id, name) VALUES (?, ?, ?)`, p.ID, p.OwnerID, p.Name)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

func (r *AccountRepo) ListParties(ctx context.Context, kind PartyKind, ownerID uint64) ([]model.Party, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name FROM `+partyTable(kind)+` WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Party{}
	for rows.Next() {
		var p model.Party
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// partyTable whitelists the table name interpolated into queries.
func partyTable(kind PartyKind) string {
	if kind == Vendors {
		return "vendors"
	}
	return "customers"
}
