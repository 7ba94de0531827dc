package sheets

import (
	"context"

	"blocapp/internal/core"
)

// Ports for outbound adapters.
type (
	// TableWriter pushes a published maintenance table to an external
	// spreadsheet, one tab per month.
	TableWriter interface {
		WriteTable(ctx context.Context, associationID, month string, rows []core.BillingRow) error
	}
)
