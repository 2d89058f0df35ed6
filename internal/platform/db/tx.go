package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Conn returns the transaction bound to ctx, or db scoped to ctx when there is none.
// Repositories call it for every statement so they join a surrounding transaction.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// InTransaction reports whether ctx carries a transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// Transactor opens one database transaction per call and binds it to the context.
type Transactor struct {
	db *gorm.DB
}

// NewTransactor creates a Transactor on db.
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTransaction runs fn in a transaction that commits when fn returns nil.
// A call made with a ctx that already carries a transaction joins it.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
