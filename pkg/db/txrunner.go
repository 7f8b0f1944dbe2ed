package db

import (
	"context"

	"github.com/dealerstack/vaahan/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TxRunner executes the settlement write set. When the store supports
// multi-record transactions every Run is atomic; otherwise it degrades
// to sequential writes and the out-of-band reconciliation job is the
// safety net for a crash between them.
type TxRunner struct {
	db     *gorm.DB
	log    *zap.Logger
	atomic bool
}

// NewTxRunner probes the store for transaction support at startup.
func NewTxRunner(conn *gorm.DB, cfg config.Config, log *zap.Logger) *TxRunner {
	runner := &TxRunner{
		db:     conn,
		log:    log.Named("db.txrunner"),
		atomic: !cfg.DBDisableTx,
	}
	if runner.atomic {
		if err := probeTransactions(conn); err != nil {
			runner.atomic = false
			runner.log.Warn("store does not support transactions, degrading to sequential writes",
				zap.Error(err))
		}
	}
	if !runner.atomic {
		runner.log.Warn("settlement writes are NOT atomic; balance drift is repaired by the reconciliation job")
	}
	return runner
}

func probeTransactions(conn *gorm.DB) error {
	return conn.Transaction(func(tx *gorm.DB) error { return nil })
}

// Atomic reports whether Run executes inside a real transaction.
func (r *TxRunner) Atomic() bool {
	return r.atomic
}

// Run executes fn against a transaction handle, or the bare connection
// in degraded mode.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.atomic {
		return r.db.WithContext(ctx).Transaction(fn)
	}
	return fn(r.db.WithContext(ctx))
}
