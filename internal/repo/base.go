package repo

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Base is embedded by the domain repositories. Calls made with a context
// produced by InTx run inside that transaction, so repositories compose
// without passing *gorm.DB around.
type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB returns the handle for ctx: the open transaction when there is one,
// otherwise the pool bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return b.conn.WithContext(ctx)
}

// InTx runs fn in a transaction. Nested calls join the outer transaction.
func (b Base) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return b.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
