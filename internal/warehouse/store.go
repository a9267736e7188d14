// Package warehouse is the storage collaborator of the pipeline: it holds
// the latest materialization of every model. Writes are full refreshes; a
// new materialization replaces the previous one wholesale, there is no
// incremental upsert. Two implementations exist: an in-memory store used by
// tests and DB-less deployments, and a Postgres store.
package warehouse

import (
	"context"

	"github.com/citybike/warehouse/internal/domain"
)

// Store persists model materializations.
// The pipeline runner is the only writer; validation rules and the HTTP layer
// read through the same interface, so every reader sees complete
// materializations only.
type Store interface {
	// Write replaces the model's materialization with the given table.
	Write(ctx context.Context, t *domain.Table) error

	// Read returns the model's latest materialization.
	// Returns domain.ErrNotMaterialized when the model has never been written.
	Read(ctx context.Context, model string) (*domain.Table, error)

	// Models returns the names of all materialized models, sorted.
	Models(ctx context.Context) ([]string, error)
}
