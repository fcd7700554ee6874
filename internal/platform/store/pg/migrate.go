package pg

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schema string

// Schema returns the embedded DDL
func Schema() string { return schema }

// Migrate applies the idempotent schema in one transaction
func (p *PG) Migrate(ctx context.Context) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// serialize concurrent boots
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(74201)"); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, schema); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
