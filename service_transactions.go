package aclkit

import (
	"context"
	"fmt"
	"time"

	"github.com/fernandezvara/dbkit"
)

// withDB returns a Service bound to the given connection or transaction,
// sharing the parent's transaction monitor.
func (s *Service) withDB(db dbkit.IDB) *Service {
	return &Service{db: db, txMonitor: s.txMonitor}
}

// Transaction executes fn within a database transaction with automatic
// commit/rollback. fn receives a Service bound to the transaction; all
// operations inside must go through it. If fn returns an error the
// transaction is rolled back, otherwise it is committed. Nested calls use
// savepoints.
//
// Example:
//
//	err := service.Transaction(ctx, func(ctx context.Context, tx *aclkit.Service) error {
//	    if err := tx.DelAllPermissions(ctx, user); err != nil {
//	        return err // rollback
//	    }
//	    return tx.AddPermissions(ctx, user, refs...) // commit when nil
//	})
func (s *Service) Transaction(ctx context.Context, fn func(ctx context.Context, tx *Service) error) error {
	start := time.Now()
	var err error

	switch db := s.db.(type) {
	case *dbkit.Tx:
		// Already in a transaction, use a savepoint.
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, s.withDB(tx))
		})
	case *dbkit.DBKit:
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, s.withDB(tx))
		})
	default:
		err = fmt.Errorf("transaction support requires a dbkit.DBKit or dbkit.Tx instance")
	}

	duration := time.Since(start)
	s.txMonitor.recordTransaction(duration, err == nil)

	return err
}

// TransactionWithOptions executes fn within a database transaction with
// custom options. Supports read-only transactions, isolation levels, and
// other transaction parameters. Options are ignored for nested transactions,
// which run as savepoints.
//
// Example:
//
//	err := service.TransactionWithOptions(ctx, dbkit.SerializableTxOptions(), func(ctx context.Context, tx *aclkit.Service) error {
//	    return tx.SetPermissions(ctx, user, refs...)
//	})
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context, tx *Service) error) error {
	switch db := s.db.(type) {
	case *dbkit.Tx:
		return db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, s.withDB(tx))
		})
	case *dbkit.DBKit:
		return db.TransactionWithOptions(ctx, opts, func(tx *dbkit.Tx) error {
			return fn(ctx, s.withDB(tx))
		})
	}

	return fmt.Errorf("transaction support requires a dbkit.DBKit or dbkit.Tx instance")
}

// ReadOnlyTransaction executes fn within a read-only database transaction.
// Useful for multi-query reads that need a consistent snapshot, such as
// computing effective permission sets for several subjects.
//
// Example:
//
//	err := service.ReadOnlyTransaction(ctx, func(ctx context.Context, tx *aclkit.Service) error {
//	    grants, err = tx.WithPermissionNames(ctx, subjects)
//	    return err
//	})
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx *Service) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}
