package postgres

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gold-trading-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

// capabilityPatterns identify Begin failures that mean "this deployment has
// no multi-statement transaction support" (e.g. pooled connections in
// statement mode, or a store running without replication). Different
// deployments surface this differently, so detection is by message, not code.
var capabilityPatterns = []string{
	"not a replica set",
	"transactions are not supported",
	"transaction blocks are not allowed",
	"statement pooling",
	"does not support transactions",
}

// Transactor implements ports.Transactor. It is the only place in the system
// that distinguishes atomic from non-atomic execution: when the store cannot
// open a transaction for capability reasons, the unit of work runs against
// the plain pool instead and each write is durable individually.
type Transactor struct {
	pool Pool
	log  zerolog.Logger

	fallbackOnce sync.Once
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool, log zerolog.Logger) *Transactor {
	return &Transactor{pool: pool, log: log}
}

// WithinOptionalTx runs fn inside a transaction when the store supports one.
//
// Begin failures matching a capability pattern degrade to the no-scope path;
// any other Begin failure is returned as-is. A unit-of-work error always
// propagates after a best-effort rollback (rollback failures are swallowed);
// business errors are never hidden here.
func (t *Transactor) WithinOptionalTx(ctx context.Context, fn func(ctx context.Context, db ports.DB) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		if !isCapabilityError(err) {
			return fmt.Errorf("begin tx: %w", err)
		}
		// Expected on single-node deployments: say so once, then stay quiet.
		t.fallbackOnce.Do(func() {
			t.log.Warn().Err(err).
				Msg("store has no transaction support, settlement will run without atomic scopes")
		})
		return fn(ctx, t.pool)
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isCapabilityError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range capabilityPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
