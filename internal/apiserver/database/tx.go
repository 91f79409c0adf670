package database

import (
	"context"

	"gorm.io/gorm"
)

type (
	txKey          struct{}
	commitHooksKey struct{}
)

type commitHooks struct {
	fns []func()
}

// TransactionFromContext extracts a transaction from the context
func TransactionFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		return nil
	}
	return tx
}

// ContextWithTransaction returns a context carrying tx
func ContextWithTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// AfterCommit runs fn once the outermost transaction carried by ctx commits.
// Hooks of a rolled back transaction never run. Outside a transaction fn runs
// immediately.
func AfterCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok || TransactionFromContext(ctx) == nil {
		fn()
		return
	}
	hooks.fns = append(hooks.fns, fn)
}

func getDBFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := TransactionFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
