package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

var entityTables = map[model.Entity]string{
	model.EntityUser:              "users",
	model.EntityClient:            "clients",
	model.EntityDevelopment:       "developments",
	model.EntityProductionOrder:   "production_orders",
	model.EntityProductionSheet:   "production_sheets",
	model.EntityDeliverySheet:     "delivery_sheets",
	model.EntityProductionReceipt: "production_receipts",
}

// parentColumns хранит колонки связей «один к одному» среди активных записей.
var parentColumns = map[model.Entity]string{
	model.EntityProductionOrder:   "development_id",
	model.EntityDeliverySheet:     "production_sheet_id",
	model.EntityProductionReceipt: "production_order_id",
}

func tableFor(entity model.Entity) (string, error) {
	t, ok := entityTables[entity]
	if !ok {
		return "", fmt.Errorf("unknown entity %q", entity)
	}
	return t, nil
}

func getOne[T any](ctx context.Context, q querier, entity model.Entity, scan func(pgx.Row) (T, error), sql string, args ...any) (*T, error) {
	v, err := scan(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapPgError(err, entity)
	}
	return &v, nil
}

func list[T any](ctx context.Context, q querier, entity model.Entity, spec listSpec, lq model.ListQuery, scan func(pgx.Row) (T, error)) (model.Page[T], error) {
	built, err := buildList(spec, lq)
	if err != nil {
		return model.Page[T]{}, err
	}

	var total int
	if err := q.QueryRow(ctx, built.countSQL(spec), built.args...).Scan(&total); err != nil {
		return model.Page[T]{}, mapPgError(fmt.Errorf("count %s: %w", entity, err), entity)
	}

	sql, args := built.selectSQL(spec, lq)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return model.Page[T]{}, mapPgError(fmt.Errorf("select %s: %w", entity, err), entity)
	}
	defer rows.Close()

	items := make([]T, 0, lq.Normalize().Limit)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return model.Page[T]{}, mapPgError(fmt.Errorf("scan %s: %w", entity, err), entity)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return model.Page[T]{}, mapPgError(fmt.Errorf("rows error: %w", err), entity)
	}

	return model.Page[T]{Items: items, Total: total}, nil
}

func execOne(ctx context.Context, q querier, entity model.Entity, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return mapPgError(err, entity)
	}
	if tag.RowsAffected() == 0 {
		return notFoundErrors[entity]
	}
	return nil
}

// SetActive выполняет мягкое удаление или восстановление записи.
func (r *PostgresRepository) SetActive(ctx context.Context, entity model.Entity, id uuid.UUID, active bool, at time.Time) error {
	table, err := tableFor(entity)
	if err != nil {
		return err
	}
	return execOne(ctx, r.conn(ctx), entity,
		`UPDATE `+table+` SET active = $2, updated_at = $3 WHERE id = $1`,
		id, active, at,
	)
}

// HasActiveChild сообщает, есть ли у родителя активная дочерняя запись сущности entity,
// кроме записи exclude.
func (r *PostgresRepository) HasActiveChild(ctx context.Context, entity model.Entity, parentID, exclude uuid.UUID) (bool, error) {
	table, err := tableFor(entity)
	if err != nil {
		return false, err
	}
	column, ok := parentColumns[entity]
	if !ok {
		return false, fmt.Errorf("entity %q has no one-to-one parent", entity)
	}

	var exists bool
	err = r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE `+column+` = $1 AND active AND id <> $2)`,
		parentID, exclude,
	).Scan(&exists)
	if err != nil {
		return false, mapPgError(err, entity)
	}
	return exists, nil
}

// CountActive возвращает количество активных и неактивных записей.
func (r *PostgresRepository) CountActive(ctx context.Context, entity model.Entity) (int, int, error) {
	table, err := tableFor(entity)
	if err != nil {
		return 0, 0, err
	}

	var active, inactive int
	err = r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE active), count(*) FILTER (WHERE NOT active) FROM `+table,
	).Scan(&active, &inactive)
	if err != nil {
		return 0, 0, mapPgError(err, entity)
	}
	return active, inactive, nil
}

var groupColumns = map[model.Entity]map[string]string{
	model.EntityUser:              {"role": "role"},
	model.EntityDevelopment:       {"status": "status"},
	model.EntityProductionOrder:   {"status": "status", "productionType": "production_type->>'type'"},
	model.EntityProductionSheet:   {"stage": "stage", "machine": "machine::text"},
	model.EntityDeliverySheet:     {"status": "status"},
	model.EntityProductionReceipt: {"paymentStatus": "payment_status", "paymentMethod": "payment_method"},
}

// CountBy группирует активные записи по полю и возвращает количество для каждого значения.
func (r *PostgresRepository) CountBy(ctx context.Context, entity model.Entity, field string) (map[string]int, error) {
	table, err := tableFor(entity)
	if err != nil {
		return nil, err
	}
	column, ok := groupColumns[entity][field]
	if !ok {
		return nil, apperror.ErrInvalidQuery.Withf("cannot group %s by %s", entity, field)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+column+`, count(*) FROM `+table+` WHERE active GROUP BY 1`,
	)
	if err != nil {
		return nil, mapPgError(err, entity)
	}
	defer rows.Close()

	res := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, mapPgError(err, entity)
		}
		res[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, entity)
	}
	return res, nil
}

func byReferenceSQL(spec listSpec) string {
	return `SELECT ` + spec.columns + ` FROM ` + spec.table +
		` WHERE reference = $1 ORDER BY active DESC, created_at DESC LIMIT 1`
}

func normalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}
