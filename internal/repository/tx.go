package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/drivehub/service-booking/internal/domain/shared"
)

type txKey struct{}

// UnitOfWork runs closures inside a serializable transaction and threads the
// transactional handle through the context so every repository in this
// package joins the same transaction.
type UnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a UnitOfWork over the given connection.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// RunSerializable implements reservation.TxRunner. Serializable isolation is
// the backstop that makes the conflict re-check inside the transaction an
// actual guarantee rather than a check-then-act race. When Postgres aborts
// the transaction at commit (SQLSTATE 40001), a rival booking has already
// claimed the interval, so the abort surfaces as a conflict.
func (u *UnitOfWork) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if isSerializationFailure(err) {
		return shared.NewConflictError("a concurrent booking claimed the vehicle for this interval")
	}
	return err
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

// dbFrom returns the transactional handle from ctx when inside a UnitOfWork
// closure, else the repository's own connection.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}
