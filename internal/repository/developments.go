package repository

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/printflow/internal/model"
)

var developmentsSpec = listSpec{
	table:   "developments",
	columns: `id, client_id, reference, description, client_reference, piece_image_url, variants,
		status, notes, active, created_at, updated_at`,
	search: []string{
		"reference ILIKE %[1]s",
		"description ILIKE %[1]s",
		"client_reference ILIKE %[1]s",
	},
	filters: map[string]filter{
		"clientId":  {column: "client_id", kind: filterUUID},
		"status":    {column: "status", kind: filterUpper},
		"reference": {column: "reference", kind: filterUpper},
	},
	sorts: map[string]string{
		"reference":   "reference",
		"description": "description",
		"status":      "status",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
	},
}

func scanDevelopment(row pgx.Row) (model.Development, error) {
	var d model.Development
	err := row.Scan(&d.ID, &d.ClientID, &d.Reference, &d.Description, &d.ClientReference,
		&d.PieceImageURL, &d.Variants, &d.Status, &d.Notes, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// CreateDevelopment сохраняет новую разработку. Код reference должен быть уникальным.
func (r *PostgresRepository) CreateDevelopment(ctx context.Context, d *model.Development) error {
	variants := d.Variants
	if variants == nil {
		variants = []string{}
	}
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO developments (id, client_id, reference, description, client_reference,
		     piece_image_url, variants, status, notes, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.ClientID, d.Reference, d.Description, d.ClientReference,
		d.PieceImageURL, variants, d.Status, d.Notes, d.Active, d.CreatedAt, d.UpdatedAt,
	)
	return mapPgError(err, model.EntityDevelopment)
}

// GetDevelopment возвращает разработку по идентификатору.
func (r *PostgresRepository) GetDevelopment(ctx context.Context, id uuid.UUID) (*model.Development, error) {
	return getOne(ctx, r.conn(ctx), model.EntityDevelopment, scanDevelopment,
		`SELECT `+developmentsSpec.columns+` FROM developments WHERE id = $1`, id)
}

// GetDevelopmentByReference возвращает разработку по коду.
func (r *PostgresRepository) GetDevelopmentByReference(ctx context.Context, ref string) (*model.Development, error) {
	return getOne(ctx, r.conn(ctx), model.EntityDevelopment, scanDevelopment,
		byReferenceSQL(developmentsSpec), normalizeReference(ref))
}

// ListDevelopments возвращает страницу разработок.
func (r *PostgresRepository) ListDevelopments(ctx context.Context, q model.ListQuery) (model.Page[model.Development], error) {
	return list(ctx, r.conn(ctx), model.EntityDevelopment, developmentsSpec, q, scanDevelopment)
}

// UpdateDevelopment сохраняет изменяемые поля разработки. Код reference не меняется.
func (r *PostgresRepository) UpdateDevelopment(ctx context.Context, d *model.Development) error {
	variants := d.Variants
	if variants == nil {
		variants = []string{}
	}
	return execOne(ctx, r.conn(ctx), model.EntityDevelopment,
		`UPDATE developments SET description = $2, client_reference = $3, piece_image_url = $4,
		     variants = $5, status = $6, notes = $7, updated_at = $8
		 WHERE id = $1`,
		d.ID, d.Description, d.ClientReference, d.PieceImageURL, variants, d.Status, d.Notes, d.UpdatedAt,
	)
}

// LastDevelopmentReference возвращает наибольший код разработки с префиксом prefix
// или пустую строку, если таких кодов нет.
func (r *PostgresRepository) LastDevelopmentReference(ctx context.Context, prefix string) (string, error) {
	var ref string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT reference FROM developments
		 WHERE reference ~ $1
		 ORDER BY reference DESC LIMIT 1`,
		"^"+regexp.QuoteMeta(prefix)+"[0-9]{4}$",
	).Scan(&ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapPgError(err, model.EntityDevelopment)
	}
	return ref, nil
}
