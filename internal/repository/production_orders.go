package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/printflow/internal/model"
)

// Поиск заказа охватывает описание разработки и название клиента.
var productionOrdersSpec = listSpec{
	table:   "production_orders",
	columns: `id, development_id, reference, status, production_type, fabric_type, fabric_width,
		has_craft, observations, active, created_at, updated_at`,
	search: []string{
		"reference ILIKE %[1]s",
		"fabric_type ILIKE %[1]s",
		"observations ILIKE %[1]s",
		`development_id IN (SELECT id FROM developments
		     WHERE description ILIKE %[1]s OR client_reference ILIKE %[1]s)`,
		`development_id IN (SELECT d.id FROM developments d JOIN clients c ON c.id = d.client_id
		     WHERE c.company_name ILIKE %[1]s OR c.acronym ILIKE %[1]s)`,
	},
	filters: map[string]filter{
		"developmentId":  {column: "development_id", kind: filterUUID},
		"status":         {column: "status", kind: filterUpper},
		"reference":      {column: "reference", kind: filterUpper},
		"hasCraft":       {column: "has_craft", kind: filterBool},
		"productionType": {column: "production_type->>'type'", kind: filterText},
	},
	sorts: map[string]string{
		"reference":  "reference",
		"status":     "status",
		"fabricType": "fabric_type",
		"createdAt":  "created_at",
		"updatedAt":  "updated_at",
	},
}

func scanProductionOrder(row pgx.Row) (model.ProductionOrder, error) {
	var o model.ProductionOrder
	err := row.Scan(&o.ID, &o.DevelopmentID, &o.Reference, &o.Status, &o.ProductionType, &o.FabricType,
		&o.FabricWidth, &o.HasCraft, &o.Observations, &o.Active, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateProductionOrder сохраняет новый заказ. Активный заказ на разработку может быть только один.
func (r *PostgresRepository) CreateProductionOrder(ctx context.Context, o *model.ProductionOrder) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO production_orders (id, development_id, reference, status, production_type,
		     fabric_type, fabric_width, has_craft, observations, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.DevelopmentID, o.Reference, o.Status, o.ProductionType,
		o.FabricType, o.FabricWidth, o.HasCraft, o.Observations, o.Active, o.CreatedAt, o.UpdatedAt,
	)
	return mapPgError(err, model.EntityProductionOrder)
}

// GetProductionOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	return getOne(ctx, r.conn(ctx), model.EntityProductionOrder, scanProductionOrder,
		`SELECT `+productionOrdersSpec.columns+` FROM production_orders WHERE id = $1`, id)
}

// GetProductionOrderByReference возвращает последний заказ с кодом ref, активные в приоритете.
func (r *PostgresRepository) GetProductionOrderByReference(ctx context.Context, ref string) (*model.ProductionOrder, error) {
	return getOne(ctx, r.conn(ctx), model.EntityProductionOrder, scanProductionOrder,
		byReferenceSQL(productionOrdersSpec), normalizeReference(ref))
}

// ListProductionOrders возвращает страницу заказов.
func (r *PostgresRepository) ListProductionOrders(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionOrder], error) {
	return list(ctx, r.conn(ctx), model.EntityProductionOrder, productionOrdersSpec, q, scanProductionOrder)
}

// UpdateProductionOrder сохраняет изменяемые поля заказа вместе со статусом.
func (r *PostgresRepository) UpdateProductionOrder(ctx context.Context, o *model.ProductionOrder) error {
	return execOne(ctx, r.conn(ctx), model.EntityProductionOrder,
		`UPDATE production_orders SET status = $2, production_type = $3, fabric_type = $4,
		     fabric_width = $5, has_craft = $6, observations = $7, updated_at = $8
		 WHERE id = $1`,
		o.ID, o.Status, o.ProductionType, o.FabricType, o.FabricWidth, o.HasCraft, o.Observations, o.UpdatedAt,
	)
}

// SetProductionOrderStatus меняет только статус заказа.
func (r *PostgresRepository) SetProductionOrderStatus(ctx context.Context, id uuid.UUID, status model.ProductionOrderStatus, at time.Time) error {
	return execOne(ctx, r.conn(ctx), model.EntityProductionOrder,
		`UPDATE production_orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, at,
	)
}
