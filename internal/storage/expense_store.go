package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"blocapp/internal/core"
)

// Monthly expense persistence. The per-apartment maps (meter readings and
// individual amounts) live in side tables keyed by expense id and are
// loaded back into the record's maps.

func (r *SQLiteRepository) AddMonthlyExpense(ctx context.Context, e core.MonthlyExpense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin expense transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO monthly_expenses (id, association_id, month, name, amount_cents, distribution, unit_price_cents, bill_amount_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AssociationID, e.Month, e.Name, e.Amount.Cents, string(e.Distribution), e.UnitPrice.Cents, e.BillAmount.Cents)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateExpense
		}
		return fmt.Errorf("insert monthly expense: %w", err)
	}

	if err := replaceExpenseMaps(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expense transaction: %w", err)
	}

	slog.InfoContext(ctx, "Monthly expense added",
		"association_id", e.AssociationID, "month", e.Month, "name", e.Name,
		"amount_cents", e.Amount.Cents, "distribution", string(e.Distribution))
	return nil
}

func (r *SQLiteRepository) UpdateMonthlyExpense(ctx context.Context, e core.MonthlyExpense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin expense transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE monthly_expenses SET amount_cents = ?, distribution = ?, unit_price_cents = ?, bill_amount_cents = ?
		 WHERE id = ?`,
		e.Amount.Cents, string(e.Distribution), e.UnitPrice.Cents, e.BillAmount.Cents, e.ID)
	if err != nil {
		return fmt.Errorf("update monthly expense: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	for _, table := range []string{"expense_consumptions", "expense_individual_amounts"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE expense_id = ?`, e.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := replaceExpenseMaps(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expense transaction: %w", err)
	}
	return nil
}

func replaceExpenseMaps(ctx context.Context, tx *sql.Tx, e core.MonthlyExpense) error {
	for apartmentID, reading := range e.Consumption {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_consumptions (expense_id, apartment_id, reading) VALUES (?, ?, ?)`,
			e.ID, apartmentID, reading); err != nil {
			return fmt.Errorf("insert consumption reading: %w", err)
		}
	}
	for apartmentID, amount := range e.IndividualAmounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_individual_amounts (expense_id, apartment_id, amount_cents) VALUES (?, ?, ?)`,
			e.ID, apartmentID, amount.Cents); err != nil {
			return fmt.Errorf("insert individual amount: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetMonthlyExpense(ctx context.Context, associationID, month, name string) (core.MonthlyExpense, error) {
	var e core.MonthlyExpense
	var dist string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, association_id, month, name, amount_cents, distribution, unit_price_cents, bill_amount_cents
		 FROM monthly_expenses WHERE association_id = ? AND month = ? AND name = ?`,
		associationID, month, name).
		Scan(&e.ID, &e.AssociationID, &e.Month, &e.Name, &e.Amount.Cents, &dist, &e.UnitPrice.Cents, &e.BillAmount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyExpense{}, ErrNotFound
	}
	if err != nil {
		return core.MonthlyExpense{}, fmt.Errorf("get monthly expense: %w", err)
	}
	e.Distribution = core.Distribution(dist)

	if err := r.loadExpenseMaps(ctx, &e); err != nil {
		return core.MonthlyExpense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) ListMonthlyExpenses(ctx context.Context, associationID, month string) ([]core.MonthlyExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, association_id, month, name, amount_cents, distribution, unit_price_cents, bill_amount_cents
		 FROM monthly_expenses WHERE association_id = ? AND month = ? ORDER BY created_at, name`,
		associationID, month)
	if err != nil {
		return nil, fmt.Errorf("list monthly expenses: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyExpense
	for rows.Next() {
		var e core.MonthlyExpense
		var dist string
		if err := rows.Scan(&e.ID, &e.AssociationID, &e.Month, &e.Name, &e.Amount.Cents, &dist, &e.UnitPrice.Cents, &e.BillAmount.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly expense: %w", err)
		}
		e.Distribution = core.Distribution(dist)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadExpenseMaps(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteRepository) loadExpenseMaps(ctx context.Context, e *core.MonthlyExpense) error {
	e.Consumption = make(map[string]float64)
	e.IndividualAmounts = make(map[string]core.Money)

	rows, err := r.db.QueryContext(ctx,
		`SELECT apartment_id, reading FROM expense_consumptions WHERE expense_id = ?`, e.ID)
	if err != nil {
		return fmt.Errorf("load consumption readings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var apartmentID string
		var reading float64
		if err := rows.Scan(&apartmentID, &reading); err != nil {
			return fmt.Errorf("scan consumption reading: %w", err)
		}
		e.Consumption[apartmentID] = reading
	}
	if err := rows.Err(); err != nil {
		return err
	}

	amountRows, err := r.db.QueryContext(ctx,
		`SELECT apartment_id, amount_cents FROM expense_individual_amounts WHERE expense_id = ?`, e.ID)
	if err != nil {
		return fmt.Errorf("load individual amounts: %w", err)
	}
	defer amountRows.Close()
	for amountRows.Next() {
		var apartmentID string
		var cents int64
		if err := amountRows.Scan(&apartmentID, &cents); err != nil {
			return fmt.Errorf("scan individual amount: %w", err)
		}
		e.IndividualAmounts[apartmentID] = core.Money{Cents: cents}
	}
	return amountRows.Err()
}

func (r *SQLiteRepository) DeleteMonthlyExpense(ctx context.Context, associationID, month, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM monthly_expenses WHERE association_id = ? AND month = ? AND name = ?`,
		associationID, month, name)
	if err != nil {
		return fmt.Errorf("delete monthly expense: %w", err)
	}
	return requireAffected(res)
}

// --- Expense configuration overrides ---

func (r *SQLiteRepository) SetExpenseConfig(ctx context.Context, associationID, expenseName string, d core.Distribution) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_configs (association_id, expense_name, distribution) VALUES (?, ?, ?)
		 ON CONFLICT (association_id, expense_name) DO UPDATE SET distribution = excluded.distribution`,
		associationID, expenseName, string(d))
	if err != nil {
		return fmt.Errorf("set expense config: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListExpenseConfigs(ctx context.Context, associationID string) (map[core.ConfigKey]core.Distribution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT expense_name, distribution FROM expense_configs WHERE association_id = ?`, associationID)
	if err != nil {
		return nil, fmt.Errorf("list expense configs: %w", err)
	}
	defer rows.Close()

	out := make(map[core.ConfigKey]core.Distribution)
	for rows.Next() {
		var name, dist string
		if err := rows.Scan(&name, &dist); err != nil {
			return nil, fmt.Errorf("scan expense config: %w", err)
		}
		out[core.ConfigKey{AssociationID: associationID, ExpenseName: name}] = core.Distribution(dist)
	}
	return out, rows.Err()
}

// --- Participation overrides ---

func (r *SQLiteRepository) SetParticipation(ctx context.Context, apartmentID, expenseName string, p core.Participation) error {
	var value sql.NullFloat64
	switch p.Kind {
	case core.ParticipationPercentage:
		if p.Percent != nil {
			value = sql.NullFloat64{Float64: *p.Percent, Valid: true}
		}
	case core.ParticipationFixed:
		if p.Amount != nil {
			value = sql.NullFloat64{Float64: p.Amount.Lei(), Valid: true}
		}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_participations (apartment_id, expense_name, kind, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT (apartment_id, expense_name) DO UPDATE SET kind = excluded.kind, value = excluded.value`,
		apartmentID, expenseName, string(p.Kind), value)
	if err != nil {
		return fmt.Errorf("set participation: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListParticipations(ctx context.Context, associationID string) (map[core.ParticipationKey]core.Participation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.apartment_id, p.expense_name, p.kind, p.value
		 FROM expense_participations p
		 JOIN apartments a ON a.id = p.apartment_id
		 JOIN stairs s ON s.id = a.stair_id
		 JOIN blocks b ON b.id = s.block_id
		 WHERE b.association_id = ?`, associationID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	out := make(map[core.ParticipationKey]core.Participation)
	for rows.Next() {
		var apartmentID, name, kind string
		var value sql.NullFloat64
		if err := rows.Scan(&apartmentID, &name, &kind, &value); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out[core.ParticipationKey{ApartmentID: apartmentID, ExpenseName: name}] = participationFromRow(kind, value)
	}
	return out, rows.Err()
}

func participationFromRow(kind string, value sql.NullFloat64) core.Participation {
	p := core.Participation{Kind: core.ParticipationKind(kind)}
	if !value.Valid {
		return p
	}
	switch p.Kind {
	case core.ParticipationPercentage:
		v := value.Float64
		p.Percent = &v
	case core.ParticipationFixed:
		m := core.FromLei(value.Float64)
		p.Amount = &m
	}
	return p
}

// --- Disabled expense names ---

func (r *SQLiteRepository) SetDisabledExpenses(ctx context.Context, associationID, month string, names []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin disabled-expenses transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM disabled_expenses WHERE association_id = ? AND month = ?`, associationID, month); err != nil {
		return fmt.Errorf("clear disabled expenses: %w", err)
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO disabled_expenses (association_id, month, expense_name) VALUES (?, ?, ?)`,
			associationID, month, name); err != nil {
			return fmt.Errorf("insert disabled expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit disabled-expenses transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDisabledExpenses(ctx context.Context, associationID, month string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT expense_name FROM disabled_expenses WHERE association_id = ? AND month = ? ORDER BY expense_name`,
		associationID, month)
	if err != nil {
		return nil, fmt.Errorf("list disabled expenses: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan disabled expense: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// --- Custom expense types ---

func (r *SQLiteRepository) AddCustomExpenseType(ctx context.Context, associationID string, t core.ExpenseType) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO custom_expense_types (id, association_id, name, default_distribution, position)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM custom_expense_types WHERE association_id = ?))`,
		newExpenseTypeID(associationID, t.Name), associationID, t.Name, string(t.DefaultDistribution), associationID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateExpense
		}
		return fmt.Errorf("add custom expense type: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCustomExpenseTypes(ctx context.Context, associationID string) ([]core.ExpenseType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, default_distribution FROM custom_expense_types WHERE association_id = ? ORDER BY position`,
		associationID)
	if err != nil {
		return nil, fmt.Errorf("list custom expense types: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseType
	for rows.Next() {
		var t core.ExpenseType
		var dist string
		if err := rows.Scan(&t.Name, &dist); err != nil {
			return nil, fmt.Errorf("scan custom expense type: %w", err)
		}
		t.DefaultDistribution = core.Distribution(dist)
		t.Custom = true
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteCustomExpenseType(ctx context.Context, associationID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM custom_expense_types WHERE association_id = ? AND name = ?`, associationID, name)
	if err != nil {
		return fmt.Errorf("delete custom expense type: %w", err)
	}
	return requireAffected(res)
}

func newExpenseTypeID(associationID, name string) string {
	return associationID + ":" + strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
