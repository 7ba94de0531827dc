package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"blocapp/internal/core"
)

// SnapshotRef points at one published maintenance table.
type SnapshotRef struct {
	AssociationID string
	Month         string
}

// SaveSnapshot stores the published maintenance table for a month. Each row
// is kept as JSON so the published figures survive later edits to the
// structure or expense data. The paid flag is tracked in its own column so
// it stays mutable after publication.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, associationID, month string, rows []core.BillingRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM maintenance_snapshots WHERE association_id = ? AND month = ?`, associationID, month); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	now := time.Now().UTC()
	for _, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal snapshot row: %w", err)
		}
		paid := 0
		if row.Paid {
			paid = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO maintenance_snapshots (association_id, month, apartment_id, row_json, paid, synced, updated_at)
			 VALUES (?, ?, ?, ?, ?, 0, ?)`,
			associationID, month, row.ApartmentID, string(payload), paid, now); err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot transaction: %w", err)
	}
	return nil
}

// LoadSnapshot returns the published table for a month, or found=false when
// the month was never published.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, associationID, month string) ([]core.BillingRow, bool, error) {
	dbRows, err := r.db.QueryContext(ctx,
		`SELECT row_json, paid FROM maintenance_snapshots WHERE association_id = ? AND month = ?`,
		associationID, month)
	if err != nil {
		return nil, false, fmt.Errorf("query snapshot: %w", err)
	}
	defer dbRows.Close()

	var rows []core.BillingRow
	for dbRows.Next() {
		var payload string
		var paid int
		if err := dbRows.Scan(&payload, &paid); err != nil {
			return nil, false, fmt.Errorf("scan snapshot row: %w", err)
		}
		var row core.BillingRow
		if err := json.Unmarshal([]byte(payload), &row); err != nil {
			return nil, false, fmt.Errorf("unmarshal snapshot row: %w", err)
		}
		row.Paid = paid != 0
		rows = append(rows, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Apartment != rows[j].Apartment {
			return rows[i].Apartment < rows[j].Apartment
		}
		if rows[i].BlockName != rows[j].BlockName {
			return rows[i].BlockName < rows[j].BlockName
		}
		return rows[i].StairName < rows[j].StairName
	})
	return rows, true, nil
}

// SetSnapshotPaid flips the payment flag on a published row and marks it
// for re-sync.
func (r *SQLiteRepository) SetSnapshotPaid(ctx context.Context, associationID, month, apartmentID string, paid bool) error {
	paidVal := 0
	if paid {
		paidVal = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE maintenance_snapshots SET paid = ?, synced = 0, updated_at = ?
		 WHERE association_id = ? AND month = ? AND apartment_id = ?`,
		paidVal, time.Now().UTC(), associationID, month, apartmentID)
	if err != nil {
		return fmt.Errorf("set snapshot paid: %w", err)
	}
	return requireAffected(res)
}

// ListUnsyncedSnapshots returns the months with rows not yet pushed to the
// external sheet, one ref per month.
func (r *SQLiteRepository) ListUnsyncedSnapshots(ctx context.Context) ([]SnapshotRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT association_id, month FROM maintenance_snapshots WHERE synced = 0 ORDER BY association_id, month`)
	if err != nil {
		return nil, fmt.Errorf("query unsynced snapshots: %w", err)
	}
	defer rows.Close()

	var refs []SnapshotRef
	for rows.Next() {
		var ref SnapshotRef
		if err := rows.Scan(&ref.AssociationID, &ref.Month); err != nil {
			return nil, fmt.Errorf("scan snapshot ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// MarkSnapshotSynced records that the month's rows were delivered.
func (r *SQLiteRepository) MarkSnapshotSynced(ctx context.Context, associationID, month string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE maintenance_snapshots SET synced = 1 WHERE association_id = ? AND month = ?`,
		associationID, month)
	if err != nil {
		return fmt.Errorf("mark snapshot synced: %w", err)
	}
	return nil
}
