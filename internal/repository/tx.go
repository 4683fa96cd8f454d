package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// RunTx executes fn inside a GORM transaction when db is available, or calls
// fn directly when db is nil (unit test mode). Repositories and collaborators
// reached through the returned context join the same transaction.
func RunTx(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if db == nil {
		return fn(ctx)
	}
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction bound to ctx, or db scoped to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
