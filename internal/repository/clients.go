package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/printflow/internal/model"
)

var clientsSpec = listSpec{
	table:   "clients",
	columns: `id, company_name, acronym, tax_id, contact, address, rotary_price, localized_price,
		notes, active, created_at, updated_at`,
	search: []string{
		"company_name ILIKE %[1]s",
		"acronym ILIKE %[1]s",
		"tax_id ILIKE %[1]s",
		"contact->>'name' ILIKE %[1]s",
		"contact->>'email' ILIKE %[1]s",
	},
	filters: map[string]filter{
		"acronym": {column: "acronym", kind: filterUpper},
		"taxId":   {column: "tax_id", kind: filterText},
		"state":   {column: "upper(address->>'state')", kind: filterUpper},
		"city":    {column: "address->>'city'", kind: filterText},
	},
	sorts: map[string]string{
		"companyName": "company_name",
		"acronym":     "acronym",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
	},
}

func scanClient(row pgx.Row) (model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.CompanyName, &c.Acronym, &c.TaxID, &c.Contact, &c.Address,
		&c.RotaryPrice, &c.LocalizedPrice, &c.Notes, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateClient сохраняет нового клиента.
func (r *PostgresRepository) CreateClient(ctx context.Context, c *model.Client) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO clients (id, company_name, acronym, tax_id, contact, address, rotary_price,
		     localized_price, notes, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.CompanyName, c.Acronym, c.TaxID, c.Contact, c.Address, c.RotaryPrice,
		c.LocalizedPrice, c.Notes, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	return mapPgError(err, model.EntityClient)
}

// GetClient возвращает клиента по идентификатору.
func (r *PostgresRepository) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return getOne(ctx, r.conn(ctx), model.EntityClient, scanClient,
		`SELECT `+clientsSpec.columns+` FROM clients WHERE id = $1`, id)
}

// ListClients возвращает страницу клиентов.
func (r *PostgresRepository) ListClients(ctx context.Context, q model.ListQuery) (model.Page[model.Client], error) {
	return list(ctx, r.conn(ctx), model.EntityClient, clientsSpec, q, scanClient)
}

// UpdateClient сохраняет изменяемые поля клиента.
func (r *PostgresRepository) UpdateClient(ctx context.Context, c *model.Client) error {
	return execOne(ctx, r.conn(ctx), model.EntityClient,
		`UPDATE clients SET company_name = $2, acronym = $3, tax_id = $4, contact = $5, address = $6,
		     rotary_price = $7, localized_price = $8, notes = $9, updated_at = $10
		 WHERE id = $1`,
		c.ID, c.CompanyName, c.Acronym, c.TaxID, c.Contact, c.Address,
		c.RotaryPrice, c.LocalizedPrice, c.Notes, c.UpdatedAt,
	)
}
