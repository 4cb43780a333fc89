package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/printflow/internal/model"
)

var deliverySheetsSpec = listSpec{
	table:   "delivery_sheets",
	columns: `id, production_sheet_id, reference, total_value, address, status, delivery_date,
		notes, active, created_at, updated_at`,
	search: []string{
		"reference ILIKE %[1]s",
		"notes ILIKE %[1]s",
		"address->>'city' ILIKE %[1]s",
		"address->>'street' ILIKE %[1]s",
	},
	filters: map[string]filter{
		"productionSheetId": {column: "production_sheet_id", kind: filterUUID},
		"status":            {column: "status", kind: filterUpper},
		"reference":         {column: "reference", kind: filterUpper},
	},
	sorts: map[string]string{
		"reference":    "reference",
		"totalValue":   "total_value",
		"status":       "status",
		"deliveryDate": "delivery_date",
		"createdAt":    "created_at",
		"updatedAt":    "updated_at",
	},
}

func scanDeliverySheet(row pgx.Row) (model.DeliverySheet, error) {
	var d model.DeliverySheet
	err := row.Scan(&d.ID, &d.ProductionSheetID, &d.Reference, &d.TotalValue, &d.Address, &d.Status,
		&d.DeliveryDate, &d.Notes, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// CreateDeliverySheet сохраняет новую доставку. Активная доставка на лист может быть только одна.
func (r *PostgresRepository) CreateDeliverySheet(ctx context.Context, d *model.DeliverySheet) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO delivery_sheets (id, production_sheet_id, reference, total_value, address,
		     status, delivery_date, notes, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID, d.ProductionSheetID, d.Reference, d.TotalValue, d.Address,
		d.Status, d.DeliveryDate, d.Notes, d.Active, d.CreatedAt, d.UpdatedAt,
	)
	return mapPgError(err, model.EntityDeliverySheet)
}

// GetDeliverySheet возвращает доставку по идентификатору.
func (r *PostgresRepository) GetDeliverySheet(ctx context.Context, id uuid.UUID) (*model.DeliverySheet, error) {
	return getOne(ctx, r.conn(ctx), model.EntityDeliverySheet, scanDeliverySheet,
		`SELECT `+deliverySheetsSpec.columns+` FROM delivery_sheets WHERE id = $1`, id)
}

// GetDeliverySheetByReference возвращает последнюю доставку с кодом ref, активные в приоритете.
func (r *PostgresRepository) GetDeliverySheetByReference(ctx context.Context, ref string) (*model.DeliverySheet, error) {
	return getOne(ctx, r.conn(ctx), model.EntityDeliverySheet, scanDeliverySheet,
		byReferenceSQL(deliverySheetsSpec), normalizeReference(ref))
}

// ListDeliverySheets возвращает страницу доставок.
func (r *PostgresRepository) ListDeliverySheets(ctx context.Context, q model.ListQuery) (model.Page[model.DeliverySheet], error) {
	return list(ctx, r.conn(ctx), model.EntityDeliverySheet, deliverySheetsSpec, q, scanDeliverySheet)
}

// UpdateDeliverySheet сохраняет изменяемые поля доставки.
func (r *PostgresRepository) UpdateDeliverySheet(ctx context.Context, d *model.DeliverySheet) error {
	return execOne(ctx, r.conn(ctx), model.EntityDeliverySheet,
		`UPDATE delivery_sheets SET total_value = $2, address = $3, status = $4, delivery_date = $5,
		     notes = $6, updated_at = $7
		 WHERE id = $1`,
		d.ID, d.TotalValue, d.Address, d.Status, d.DeliveryDate, d.Notes, d.UpdatedAt,
	)
}
