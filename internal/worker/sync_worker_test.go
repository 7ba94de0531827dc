package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blocapp/internal/amqp"
	"blocapp/internal/core"
	"blocapp/internal/sheets/memory"
	"blocapp/internal/storage"
)

func newWorkerEnv(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "blocapp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	store := memory.New()
	return NewSyncWorker(repo, store), repo, store
}

func seedSnapshot(t *testing.T, repo *storage.SQLiteRepository) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.CreateAssociation(ctx, core.Association{ID: "asoc-1", Name: "Asociația Primăverii"}))
	rows := []core.BillingRow{{
		ApartmentID: "ap-1", Apartment: 1, Owner: "Popescu Ion", Persons: 2,
		BlockName: "A1", StairName: "Scara 1",
		CurrentMaintenance: core.FromLei(150), TotalMaintenance: core.FromLei(150),
		TotalDatorat: core.FromLei(150),
	}}
	require.NoError(t, repo.SaveSnapshot(ctx, "asoc-1", "ianuarie 2025", rows))
}

func TestHandleTableMessage_SyncsAndMarks(t *testing.T) {
	worker, repo, store := newWorkerEnv(t)
	ctx := context.Background()
	seedSnapshot(t, repo)

	msg := amqp.NewTablePublishedMessage("asoc-1", "ianuarie 2025")
	require.NoError(t, worker.HandleTableMessage(ctx, msg))

	rows := store.Table("asoc-1", "ianuarie 2025")
	require.Len(t, rows, 1)
	assert.Equal(t, "Popescu Ion", rows[0].Owner)

	unsynced, err := repo.ListUnsyncedSnapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)
}

func TestHandleTableMessage_MissingSnapshot(t *testing.T) {
	worker, _, store := newWorkerEnv(t)

	msg := amqp.NewTablePublishedMessage("asoc-missing", "ianuarie 2025")
	require.NoError(t, worker.HandleTableMessage(context.Background(), msg))
	assert.Equal(t, 0, store.Writes())
}

func TestProcessPendingTables(t *testing.T) {
	worker, repo, store := newWorkerEnv(t)
	ctx := context.Background()
	seedSnapshot(t, repo)

	require.NoError(t, worker.ProcessPendingTables(ctx))
	assert.Equal(t, 1, store.Writes())

	// second pass has nothing left to deliver
	require.NoError(t, worker.ProcessPendingTables(ctx))
	assert.Equal(t, 1, store.Writes())
}
