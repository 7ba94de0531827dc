// Package worker pushes published maintenance tables to the configured
// spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"blocapp/internal/amqp"
	"blocapp/internal/sheets"
	"blocapp/internal/storage"
)

// SyncWorker delivers maintenance snapshots from SQLite to the sheet. AMQP
// messages drive normal operation; the pending scan recovers anything a
// lost message or downtime left behind.
type SyncWorker struct {
	storage *storage.SQLiteRepository
	sheets  sheets.TableWriter
}

func NewSyncWorker(storage *storage.SQLiteRepository, sheets sheets.TableWriter) *SyncWorker {
	return &SyncWorker{
		storage: storage,
		sheets:  sheets,
	}
}

// HandleTableMessage processes a single table-published message from AMQP.
func (w *SyncWorker) HandleTableMessage(ctx context.Context, msg *amqp.TablePublishedMessage) error {
	slog.InfoContext(ctx, "Processing table message",
		"association_id", msg.AssociationID,
		"month", msg.Month)

	return w.syncTable(ctx, msg.AssociationID, msg.Month)
}

// ProcessPendingTables pushes every snapshot still marked unsynced. This is
// a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTables(ctx context.Context) error {
	refs, err := w.storage.ListUnsyncedSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("list unsynced snapshots: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending tables", "count", len(refs))

	for _, ref := range refs {
		if err := w.syncTable(ctx, ref.AssociationID, ref.Month); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending table",
				"association_id", ref.AssociationID,
				"month", ref.Month,
				"error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck runs the pending scan once at worker startup to recover
// from missed messages or downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	refs, err := w.storage.ListUnsyncedSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("list unsynced snapshots for startup check: %w", err)
	}
	if len(refs) == 0 {
		slog.InfoContext(ctx, "No pending tables found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending tables on startup, processing...",
		"count", len(refs))
	return w.ProcessPendingTables(ctx)
}

func (w *SyncWorker) syncTable(ctx context.Context, associationID, month string) error {
	rows, found, err := w.storage.LoadSnapshot(ctx, associationID, month)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		// The snapshot can be gone if the database was reset after the
		// message was queued. Nothing to deliver.
		slog.WarnContext(ctx, "No snapshot for table message",
			"association_id", associationID,
			"month", month)
		return nil
	}

	if err := w.sheets.WriteTable(ctx, associationID, month, rows); err != nil {
		return fmt.Errorf("write table to sheets: %w", err)
	}

	if err := w.storage.MarkSnapshotSynced(ctx, associationID, month); err != nil {
		slog.ErrorContext(ctx, "Failed to mark snapshot synced",
			"association_id", associationID,
			"month", month,
			"error", err)
		// Don't return error here - the write actually worked
	}

	slog.InfoContext(ctx, "Successfully synced table",
		"association_id", associationID,
		"month", month,
		"rows", len(rows))
	return nil
}
