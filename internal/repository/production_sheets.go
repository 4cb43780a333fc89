package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/printflow/internal/model"
)

var productionSheetsSpec = listSpec{
	table:   "production_sheets",
	columns: `id, production_order_id, reference, entry_date, expected_exit_date, machine, stage,
		temperature, velocity, production_notes, active, created_at, updated_at`,
	search: []string{
		"reference ILIKE %[1]s",
		"production_notes ILIKE %[1]s",
	},
	filters: map[string]filter{
		"productionOrderId": {column: "production_order_id", kind: filterUUID},
		"stage":             {column: "stage", kind: filterUpper},
		"machine":           {column: "machine", kind: filterInt},
		"reference":         {column: "reference", kind: filterUpper},
	},
	sorts: map[string]string{
		"reference":        "reference",
		"entryDate":        "entry_date",
		"expectedExitDate": "expected_exit_date",
		"machine":          "machine",
		"stage":            "stage",
		"createdAt":        "created_at",
		"updatedAt":        "updated_at",
	},
}

func scanProductionSheet(row pgx.Row) (model.ProductionSheet, error) {
	var s model.ProductionSheet
	err := row.Scan(&s.ID, &s.ProductionOrderID, &s.Reference, &s.EntryDate, &s.ExpectedExitDate,
		&s.Machine, &s.Stage, &s.Temperature, &s.Velocity, &s.ProductionNotes, &s.Active,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateProductionSheet сохраняет новый производственный лист.
func (r *PostgresRepository) CreateProductionSheet(ctx context.Context, s *model.ProductionSheet) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO production_sheets (id, production_order_id, reference, entry_date,
		     expected_exit_date, machine, stage, temperature, velocity, production_notes, active,
		     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.ProductionOrderID, s.Reference, s.EntryDate, s.ExpectedExitDate, s.Machine, s.Stage,
		s.Temperature, s.Velocity, s.ProductionNotes, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	return mapPgError(err, model.EntityProductionSheet)
}

// GetProductionSheet возвращает производственный лист по идентификатору.
func (r *PostgresRepository) GetProductionSheet(ctx context.Context, id uuid.UUID) (*model.ProductionSheet, error) {
	return getOne(ctx, r.conn(ctx), model.EntityProductionSheet, scanProductionSheet,
		`SELECT `+productionSheetsSpec.columns+` FROM production_sheets WHERE id = $1`, id)
}

// GetProductionSheetForUpdate возвращает лист, блокируя строку до конца транзакции.
func (r *PostgresRepository) GetProductionSheetForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductionSheet, error) {
	return getOne(ctx, r.conn(ctx), model.EntityProductionSheet, scanProductionSheet,
		`SELECT `+productionSheetsSpec.columns+` FROM production_sheets WHERE id = $1 FOR UPDATE`, id)
}

// GetProductionSheetByReference возвращает последний лист с кодом ref, активные в приоритете.
func (r *PostgresRepository) GetProductionSheetByReference(ctx context.Context, ref string) (*model.ProductionSheet, error) {
	return getOne(ctx, r.conn(ctx), model.EntityProductionSheet, scanProductionSheet,
		byReferenceSQL(productionSheetsSpec), normalizeReference(ref))
}

// ListProductionSheets возвращает страницу производственных листов.
func (r *PostgresRepository) ListProductionSheets(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionSheet], error) {
	return list(ctx, r.conn(ctx), model.EntityProductionSheet, productionSheetsSpec, q, scanProductionSheet)
}

// UpdateProductionSheet сохраняет изменяемые поля листа.
func (r *PostgresRepository) UpdateProductionSheet(ctx context.Context, s *model.ProductionSheet) error {
	return execOne(ctx, r.conn(ctx), model.EntityProductionSheet,
		`UPDATE production_sheets SET entry_date = $2, expected_exit_date = $3, machine = $4,
		     stage = $5, temperature = $6, velocity = $7, production_notes = $8, updated_at = $9
		 WHERE id = $1`,
		s.ID, s.EntryDate, s.ExpectedExitDate, s.Machine, s.Stage, s.Temperature, s.Velocity,
		s.ProductionNotes, s.UpdatedAt,
	)
}
