package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/citybike/warehouse/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each
// test, giving free per-test isolation without any manual cleanup.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists materializations in Postgres. Each model has a
// physical table created by the goose migrations; the warehouse_runs meta
// table records which models have been materialized and when, so Read can
// distinguish "never materialized" from "materialized empty".
type PostgresStore struct {
	db db
}

// NewPostgresStore constructs a PostgresStore.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresStore(db db) *PostgresStore {
	return &PostgresStore{db: db}
}

// Write replaces the model's rows inside one transaction: truncate, bulk
// insert via COPY, record the materialization. A failure at any step rolls
// the whole refresh back, so readers never observe a partial materialization.
func (s *PostgresStore) Write(ctx context.Context, t *domain.Table) error {
	ident, err := tableIdent(t.Name)
	if err != nil {
		return fmt.Errorf("warehouse.PostgresStore.Write: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("warehouse.PostgresStore.Write: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE "+ident.Sanitize()); err != nil {
		return fmt.Errorf("warehouse.PostgresStore.Write: truncate %s: %w", t.Name, err)
	}

	if len(t.Rows) > 0 {
		if _, err := tx.CopyFrom(ctx, ident, t.Columns, pgx.CopyFromRows(t.Rows)); err != nil {
			return fmt.Errorf("warehouse.PostgresStore.Write: copy into %s: %w", t.Name, err)
		}
	}

	const meta = `
		INSERT INTO warehouse_runs (model, row_count, materialized_at)
		VALUES (@model, @row_count, now())
		ON CONFLICT (model) DO UPDATE
		SET row_count = excluded.row_count, materialized_at = excluded.materialized_at`
	args := pgx.NamedArgs{"model": t.Name, "row_count": len(t.Rows)}
	if _, err := tx.Exec(ctx, meta, args); err != nil {
		return fmt.Errorf("warehouse.PostgresStore.Write: record %s: %w", t.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("warehouse.PostgresStore.Write: commit: %w", err)
	}
	return nil
}

// Read returns the model's latest materialization. Column names and cell
// values come straight from the result set, so the returned Table mirrors
// whatever column order the migration declared.
func (s *PostgresStore) Read(ctx context.Context, model string) (*domain.Table, error) {
	ident, err := tableIdent(model)
	if err != nil {
		return nil, fmt.Errorf("warehouse.PostgresStore.Read: %w", err)
	}

	var count int
	err = s.db.QueryRow(ctx,
		`SELECT row_count FROM warehouse_runs WHERE model = @model`,
		pgx.NamedArgs{"model": model},
	).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("warehouse.PostgresStore.Read: %s: %w", model, domain.ErrNotMaterialized)
		}
		return nil, fmt.Errorf("warehouse.PostgresStore.Read: %s: %w", model, err)
	}

	rows, err := s.db.Query(ctx, "SELECT * FROM "+ident.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("warehouse.PostgresStore.Read: select %s: %w", model, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	t := &domain.Table{Name: model, Columns: make([]string, len(fields))}
	for i, f := range fields {
		t.Columns[i] = f.Name
	}
	t.Rows = make([][]any, 0, count)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("warehouse.PostgresStore.Read: scan %s: %w", model, err)
		}
		t.Rows = append(t.Rows, normalizeCells(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse.PostgresStore.Read: rows %s: %w", model, err)
	}
	return t, nil
}

// Models returns all materialized model names, sorted.
func (s *PostgresStore) Models(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT model FROM warehouse_runs ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("warehouse.PostgresStore.Models: %w", err)
	}
	defer rows.Close()

	var models []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("warehouse.PostgresStore.Models: scan: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse.PostgresStore.Models: rows: %w", err)
	}
	return models, nil
}

// tableIdent maps a "layer.name" model identifier to a schema-qualified
// Postgres identifier.
func tableIdent(model string) (pgx.Identifier, error) {
	parts := strings.Split(model, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid model name %q (want layer.table)", model)
	}
	return pgx.Identifier{parts[0], parts[1]}, nil
}

// normalizeCells maps driver-specific cell types onto the Table cell types:
// all integer widths widen to int, timestamps stay time.Time, everything
// else passes through.
func normalizeCells(values []any) []any {
	for i, v := range values {
		switch n := v.(type) {
		case int32:
			values[i] = int(n)
		case int64:
			values[i] = int(n)
		case time.Time:
			values[i] = n.UTC()
		}
	}
	return values
}

// compile-time check: PostgresStore must satisfy Store.
var _ Store = (*PostgresStore)(nil)
