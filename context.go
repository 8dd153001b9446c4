package persist

import (
	"context"
	"strconv"

	"github.com/syssam/persist/dialect"
)

type txCtxKey struct{}

type savepointCtxKey struct{}

// NewTxContext returns a new context with the given transaction attached.
// Persist calls made with this context join tx instead of opening their own.
func NewTxContext(parent context.Context, tx dialect.Tx) context.Context {
	return context.WithValue(parent, txCtxKey{}, tx)
}

// TxFromContext returns the transaction attached to ctx, if any.
func TxFromContext(ctx context.Context) (dialect.Tx, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(dialect.Tx)
	return tx, ok && tx != nil
}

// nextSavepoint returns a savepoint name one level deeper than the
// savepoint of ctx, and a context carrying it.
func nextSavepoint(ctx context.Context) (context.Context, string) {
	depth, _ := ctx.Value(savepointCtxKey{}).(int)
	depth++
	return context.WithValue(ctx, savepointCtxKey{}, depth), "persist_sp_" + strconv.Itoa(depth)
}
