package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/printflow/internal/model"
)

var productionReceiptsSpec = listSpec{
	table:   "production_receipts",
	columns: `id, production_order_id, reference, payment_method, total_amount, paid_amount,
		payment_status, due_date, payment_date, notes, active, created_at, updated_at`,
	search: []string{
		"reference ILIKE %[1]s",
		"notes ILIKE %[1]s",
	},
	filters: map[string]filter{
		"productionOrderId": {column: "production_order_id", kind: filterUUID},
		"paymentStatus":     {column: "payment_status", kind: filterUpper},
		"paymentMethod":     {column: "payment_method", kind: filterUpper},
		"reference":         {column: "reference", kind: filterUpper},
	},
	sorts: map[string]string{
		"reference":     "reference",
		"totalAmount":   "total_amount",
		"paidAmount":    "paid_amount",
		"paymentStatus": "payment_status",
		"dueDate":       "due_date",
		"paymentDate":   "payment_date",
		"createdAt":     "created_at",
		"updatedAt":     "updated_at",
	},
}

func scanProductionReceipt(row pgx.Row) (model.ProductionReceipt, error) {
	var p model.ProductionReceipt
	err := row.Scan(&p.ID, &p.ProductionOrderID, &p.Reference, &p.PaymentMethod, &p.TotalAmount,
		&p.PaidAmount, &p.PaymentStatus, &p.DueDate, &p.PaymentDate, &p.Notes, &p.Active,
		&p.CreatedAt, &p.UpdatedAt)
	p.RemainingAmount = p.TotalAmount.Sub(p.PaidAmount)
	return p, err
}

// CreateProductionReceipt сохраняет новую квитанцию. Активная квитанция на заказ может быть только одна.
func (r *PostgresRepository) CreateProductionReceipt(ctx context.Context, p *model.ProductionReceipt) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO production_receipts (id, production_order_id, reference, payment_method,
		     total_amount, paid_amount, payment_status, due_date, payment_date, notes, active,
		     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.ProductionOrderID, p.Reference, p.PaymentMethod, p.TotalAmount, p.PaidAmount,
		p.PaymentStatus, p.DueDate, p.PaymentDate, p.Notes, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return mapPgError(err, model.EntityProductionReceipt)
}

// GetProductionReceipt возвращает квитанцию по идентификатору.
func (r *PostgresRepository) GetProductionReceipt(ctx context.Context, id uuid.UUID) (*model.ProductionReceipt, error) {
	return getOne(ctx, r.conn(ctx), model.EntityProductionReceipt, scanProductionReceipt,
		`SELECT `+productionReceiptsSpec.columns+` FROM production_receipts WHERE id = $1`, id)
}

// GetProductionReceiptByReference возвращает последнюю квитанцию с кодом ref, активные в приоритете.
func (r *PostgresRepository) GetProductionReceiptByReference(ctx context.Context, ref string) (*model.ProductionReceipt, error) {
	return getOne(ctx, r.conn(ctx), model.EntityProductionReceipt, scanProductionReceipt,
		byReferenceSQL(productionReceiptsSpec), normalizeReference(ref))
}

// ListProductionReceipts возвращает страницу квитанций.
func (r *PostgresRepository) ListProductionReceipts(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionReceipt], error) {
	return list(ctx, r.conn(ctx), model.EntityProductionReceipt, productionReceiptsSpec, q, scanProductionReceipt)
}

// UpdateProductionReceipt сохраняет изменяемые поля квитанции.
func (r *PostgresRepository) UpdateProductionReceipt(ctx context.Context, p *model.ProductionReceipt) error {
	return execOne(ctx, r.conn(ctx), model.EntityProductionReceipt,
		`UPDATE production_receipts SET payment_method = $2, total_amount = $3, paid_amount = $4,
		     payment_status = $5, due_date = $6, payment_date = $7, notes = $8, updated_at = $9
		 WHERE id = $1`,
		p.ID, p.PaymentMethod, p.TotalAmount, p.PaidAmount, p.PaymentStatus, p.DueDate,
		p.PaymentDate, p.Notes, p.UpdatedAt,
	)
}

// ReceiptTotals суммирует активные квитанции.
func (r *PostgresRepository) ReceiptTotals(ctx context.Context) (model.ReceiptTotals, error) {
	var t model.ReceiptTotals
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(paid_amount), 0)
		 FROM production_receipts WHERE active`,
	).Scan(&t.TotalAmount, &t.PaidAmount)
	if err != nil {
		return model.ReceiptTotals{}, mapPgError(err, model.EntityProductionReceipt)
	}
	t.RemainingAmount = t.TotalAmount.Sub(t.PaidAmount)
	return t, nil
}
