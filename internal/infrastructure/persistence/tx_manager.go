package persistence

import (
	"context"

	"github.com/hesabdar/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// txKey is the context key under which an open transaction handle travels
type txKey struct{}

// withTx returns a context carrying the transaction handle
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// txFromContext extracts the transaction handle from the context, if any
func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// GormTransactionManager implements ledger.TransactionManager on a GORM
// connection. The transaction handle is carried in the context so repositories
// called inside the callback automatically join the transaction.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction runs fn inside one database transaction. Any error from
// fn rolls the transaction back; a nil return commits it.
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

// Ensure GormTransactionManager implements TransactionManager
var _ ledger.TransactionManager = (*GormTransactionManager)(nil)
