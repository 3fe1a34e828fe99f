package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// VoucherRepo stores journal vouchers and their lines.  Amounts are kept as
// the strings that were entered.
type VoucherRepo struct {
	db *sql.DB
}

func NewVoucherRepo(db *sql.DB) *VoucherRepo { return &VoucherRepo{db: db} }

// Create inserts the voucher header and all of its lines in one transaction.
func (r *VoucherRepo) Create(ctx context.Context, v model.JournalVoucher) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO journal_vouchers (id, owner_id, voucher_date, narration, customer_id, vendor_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			v.ID, v.OwnerID, v.Date, v.Narration, nullable(v.CustomerID), nullable(v.VendorID), v.CreatedAt); err != nil {
			return err
		}
		if len(v.Lines) == 0 {
			return nil
		}
		q := `INSERT INTO voucher_lines (voucher_id, line_no, account_code, debit, credit) VALUES `
		args := make([]any, 0, len(v.Lines)*5)
		for i, l := range v.Lines {
			if i > 0 {
				q += ","
			}
			q += "(?, ?, ?, ?, ?)"
			args = append(args, v.ID, i+1, l.Account, l.Debit, l.Credit)
		}
		_, err := tx.ExecContext(ctx, q, args...)
		return err
	})
}

// ListByOwner returns the owner's vouchers dated within [from, to], oldest
// first, lines in entry order.  A zero bound is open.
func (r *VoucherRepo) ListByOwner(ctx context.Context, ownerID uint64, from, to time.Time) ([]model.JournalVoucher, error) {
	q := `SELECT v.id, v.owner_id, v.voucher_date, v.narration, v.customer_id, v.vendor_id, v.created_at,
	             l.account_code, l.debit, l.credit
	      FROM journal_vouchers v
	      LEFT JOIN voucher_lines l ON l.voucher_id = v.id
	      WHERE v.owner_id = ?`
	args := []any{ownerID}
	if !from.IsZero() {
		q += ` AND v.voucher_date >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		q += ` AND v.voucher_date <= ?`
		args = append(args, to)
	}
	q += ` ORDER BY v.voucher_date, v.created_at, v.id, l.line_no`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.JournalVoucher{}
	for rows.Next() {
		var (
			v                      model.JournalVoucher
			customer, vendor       sql.NullString
			account, debit, credit sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Date, &v.Narration, &customer, &vendor, &v.CreatedAt,
			&account, &debit, &credit); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].ID != v.ID {
			v.CustomerID, v.VendorID = customer.String, vendor.String
			v.Lines = []model.VoucherLine{}
			out = append(out, v)
		}
		if account.Valid {
			last := &out[len(out)-1]
			last.Lines = append(last.Lines, model.VoucherLine{Account: account.String, Debit: debit.String, Credit: credit.String})
		}
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
