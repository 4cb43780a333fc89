// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// conn возвращает текущую транзакцию из контекста или пул.
func (r *PostgresRepository) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.pool
}

// WithinTx выполняет fn в транзакции. Все вызовы репозитория с переданным в fn
// контекстом идут через эту транзакцию. Вложенный вызов использует внешнюю транзакцию.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return apperror.ErrDatabase.Wrap(fmt.Errorf("begin tx: %w", err))
		}
		defer tx.Rollback(ctx)

		if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return mapPgError(fmt.Errorf("commit tx: %w", err), "")
		}
		return nil
	})
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(r.delays) {
			break
		}

		timer := time.NewTimer(r.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Ping проверяет доступность базы данных.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return apperror.ErrDatabase.Wrap(err)
	}
	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

var uniqueViolations = map[string]*apperror.Error{
	"users_email_key":                             apperror.ErrEmailExists,
	"clients_tax_id_active_key":                   apperror.ErrTaxIDExists,
	"developments_reference_key":                  apperror.ErrReferenceConflict,
	"production_orders_development_active_key":    apperror.ErrProductionOrderExists,
	"delivery_sheets_production_sheet_active_key": apperror.ErrDeliverySheetExists,
	"production_receipts_order_active_key":        apperror.ErrProductionReceiptExists,
}

var foreignKeyViolations = map[string]*apperror.Error{
	"developments_client_id_fkey":                  apperror.ErrClientNotFound,
	"production_orders_development_id_fkey":        apperror.ErrDevelopmentNotFound,
	"production_sheets_production_order_id_fkey":   apperror.ErrProductionOrderNotFound,
	"delivery_sheets_production_sheet_id_fkey":     apperror.ErrProductionSheetNotFound,
	"production_receipts_production_order_id_fkey": apperror.ErrProductionOrderNotFound,
}

var notFoundErrors = map[model.Entity]*apperror.Error{
	model.EntityUser:              apperror.ErrUserRecordNotFound,
	model.EntityClient:            apperror.ErrClientNotFound,
	model.EntityDevelopment:       apperror.ErrDevelopmentNotFound,
	model.EntityProductionOrder:   apperror.ErrProductionOrderNotFound,
	model.EntityProductionSheet:   apperror.ErrProductionSheetNotFound,
	model.EntityDeliverySheet:     apperror.ErrDeliverySheetNotFound,
	model.EntityProductionReceipt: apperror.ErrProductionReceiptNotFound,
}

// mapPgError переводит ошибки PostgreSQL в ошибки каталога по имени нарушенного ограничения.
func mapPgError(err error, entity model.Entity) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		if e, ok := notFoundErrors[entity]; ok {
			return e
		}
		return apperror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if e, ok := uniqueViolations[pgErr.ConstraintName]; ok {
				return e.Wrap(err)
			}
		case pgerrcode.ForeignKeyViolation:
			if e, ok := foreignKeyViolations[pgErr.ConstraintName]; ok {
				return e.Wrap(err)
			}
		case pgerrcode.CheckViolation:
			if pgErr.ConstraintName == "production_receipts_paid_check" {
				return apperror.ErrPaidExceedsTotal.Wrap(err)
			}
			return apperror.ErrValidation.Withf("value violates %s", pgErr.ConstraintName).Wrap(err)
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return apperror.ErrDatabase.Wrap(err)
}
