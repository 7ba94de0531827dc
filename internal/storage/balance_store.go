package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blocapp/internal/core"
)

// Balance persistence: one-time initial balances, per-month manual
// adjustments, and the rollover output written at month close.

func (r *SQLiteRepository) SetInitialBalance(ctx context.Context, associationID, apartmentID string, b core.Balance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO initial_balances (association_id, apartment_id, restante_cents, penalitati_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (association_id, apartment_id)
		 DO UPDATE SET restante_cents = excluded.restante_cents, penalitati_cents = excluded.penalitati_cents`,
		associationID, apartmentID, b.Restante.Cents, b.Penalitati.Cents)
	if err != nil {
		return fmt.Errorf("set initial balance: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListInitialBalances(ctx context.Context, associationID string) (map[string]core.Balance, error) {
	return r.balanceMap(ctx,
		`SELECT apartment_id, restante_cents, penalitati_cents FROM initial_balances WHERE association_id = ?`,
		associationID)
}

func (r *SQLiteRepository) HasInitialBalances(ctx context.Context, associationID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM initial_balances WHERE association_id = ?`, associationID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count initial balances: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) SetBalanceAdjustment(ctx context.Context, associationID, month, apartmentID string, b core.Balance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO balance_adjustments (association_id, month, apartment_id, restante_cents, penalitati_cents)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (association_id, month, apartment_id)
		 DO UPDATE SET restante_cents = excluded.restante_cents, penalitati_cents = excluded.penalitati_cents`,
		associationID, month, apartmentID, b.Restante.Cents, b.Penalitati.Cents)
	if err != nil {
		return fmt.Errorf("set balance adjustment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBalanceAdjustments(ctx context.Context, associationID, month string) (map[string]core.Balance, error) {
	return r.balanceMap(ctx,
		`SELECT apartment_id, restante_cents, penalitati_cents FROM balance_adjustments WHERE association_id = ? AND month = ?`,
		associationID, month)
}

// SaveMonthlyBalances replaces the opening balances for a month, written as
// the rollover output when a month closes.
func (r *SQLiteRepository) SaveMonthlyBalances(ctx context.Context, associationID, month string, balances map[string]core.Balance) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin balances transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM monthly_balances WHERE association_id = ? AND month = ?`, associationID, month); err != nil {
		return fmt.Errorf("clear monthly balances: %w", err)
	}
	for apartmentID, b := range balances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_balances (association_id, month, apartment_id, restante_cents, penalitati_cents)
			 VALUES (?, ?, ?, ?, ?)`,
			associationID, month, apartmentID, b.Restante.Cents, b.Penalitati.Cents); err != nil {
			return fmt.Errorf("insert monthly balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit balances transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListMonthlyBalances(ctx context.Context, associationID, month string) (map[string]core.Balance, error) {
	return r.balanceMap(ctx,
		`SELECT apartment_id, restante_cents, penalitati_cents FROM monthly_balances WHERE association_id = ? AND month = ?`,
		associationID, month)
}

func (r *SQLiteRepository) balanceMap(ctx context.Context, query string, args ...any) (map[string]core.Balance, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()

	out := make(map[string]core.Balance)
	for rows.Next() {
		var apartmentID string
		var b core.Balance
		if err := rows.Scan(&apartmentID, &b.Restante.Cents, &b.Penalitati.Cents); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out[apartmentID] = b
	}
	return out, rows.Err()
}

// --- Month statuses ---

func (r *SQLiteRepository) GetMonthStatus(ctx context.Context, associationID, month string) (core.MonthStatus, error) {
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM month_statuses WHERE association_id = ? AND month = ?`,
		associationID, month).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		// Months start life editable; an absent row is the initial state.
		return core.MonthInLucru, nil
	}
	if err != nil {
		return "", fmt.Errorf("get month status: %w", err)
	}
	return core.MonthStatus(status), nil
}

func (r *SQLiteRepository) SetMonthStatus(ctx context.Context, associationID, month string, status core.MonthStatus) error {
	var publishedAt any
	if status == core.MonthAfisata {
		publishedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO month_statuses (association_id, month, status, published_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (association_id, month)
		 DO UPDATE SET status = excluded.status, published_at = excluded.published_at`,
		associationID, month, string(status), publishedAt)
	if err != nil {
		return fmt.Errorf("set month status: %w", err)
	}
	return nil
}

// --- Month pointers ---

// MonthPointers tracks the association's current working month and the
// pre-created next month.
type MonthPointers struct {
	Current string
	Next    string
}

func (r *SQLiteRepository) GetMonthPointers(ctx context.Context, associationID string) (MonthPointers, bool, error) {
	var p MonthPointers
	err := r.db.QueryRowContext(ctx,
		`SELECT current_month, next_month FROM association_months WHERE association_id = ?`,
		associationID).Scan(&p.Current, &p.Next)
	if errors.Is(err, sql.ErrNoRows) {
		return MonthPointers{}, false, nil
	}
	if err != nil {
		return MonthPointers{}, false, fmt.Errorf("get month pointers: %w", err)
	}
	return p, true, nil
}

func (r *SQLiteRepository) SetMonthPointers(ctx context.Context, associationID string, p MonthPointers) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO association_months (association_id, current_month, next_month) VALUES (?, ?, ?)
		 ON CONFLICT (association_id)
		 DO UPDATE SET current_month = excluded.current_month, next_month = excluded.next_month`,
		associationID, p.Current, p.Next)
	if err != nil {
		return fmt.Errorf("set month pointers: %w", err)
	}
	return nil
}
