package base

import (
	"context"

	"github.com/uptrace/bun"
)

// txKey is the context key for storing a transaction.
type txKey struct{}

// RepoTransactor defines an interface for repositories that support transactions.
type RepoTransactor interface {
	WithTx(tx bun.Tx) interface{}
}

// ContextWithTx adds a transaction to a context.
func ContextWithTx(ctx context.Context, tx *bun.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext extracts a transaction from context if present.
func TxFromContext(ctx context.Context) (*bun.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*bun.Tx)
	if !ok {
		return nil, false
	}
	return tx, true
}

// TxHandler provides common transaction handling functionality for services.
type TxHandler struct {
	DB *bun.DB
	Tx *bun.Tx
}

// NewTxHandler creates a new transaction handler.
func NewTxHandler(db *bun.DB) *TxHandler {
	return &TxHandler{DB: db}
}

// WithTx returns a new transaction handler bound to the given transaction.
func (h *TxHandler) WithTx(tx bun.Tx) *TxHandler {
	return &TxHandler{DB: h.DB, Tx: &tx}
}

// GetTx returns the current transaction, or starts a new one. The bool return
// reports whether a new transaction was started (and so must be
// committed/rolled back by the caller).
func (h *TxHandler) GetTx(ctx context.Context) (bun.Tx, bool, error) {
	if h.Tx != nil {
		return *h.Tx, false, nil
	}

	if tx, ok := TxFromContext(ctx); ok {
		return *tx, false, nil
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return tx, false, err
	}

	return tx, true, nil
}

// RunInTx executes fn within a transaction. If the handler already has a
// transaction (inherited via WithTx or the context), it reuses it and leaves
// commit/rollback to the outer caller; otherwise it starts one and commits or
// rolls it back based on fn's result.
func (h *TxHandler) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	tx, isNew, err := h.GetTx(ctx)
	if err != nil {
		return err
	}

	if isNew {
		defer func() { _ = tx.Rollback() }()
	}

	txCtx := ContextWithTx(ctx, &tx)

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	if isNew {
		return tx.Commit()
	}

	return nil
}
