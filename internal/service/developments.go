package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/validation"
	"github.com/mmeshcher/printflow/internal/workflow"
)

// referenceAttempts ограничивает, сколько раз выделяется новый код при конфликте уникального индекса.
const referenceAttempts = 3

// ListDevelopments возвращает страницу разработок.
func (s *Service) ListDevelopments(ctx context.Context, q model.ListQuery) (model.Page[model.Development], error) {
	return s.repo.ListDevelopments(ctx, q)
}

// GetDevelopment возвращает разработку по идентификатору или коду reference.
func (s *Service) GetDevelopment(ctx context.Context, key string) (*model.Development, error) {
	return lookup(ctx, key, s.repo.GetDevelopment, s.repo.GetDevelopmentByReference)
}

// CreateDevelopment создаёт разработку и выделяет ей код вида {yy}{ACRONYM}{nnnn}.
// Код уникален; при одновременном создании проигравший запрос повторяет выделение.
func (s *Service) CreateDevelopment(ctx context.Context, in model.DevelopmentInput) (*model.Development, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	client, err := s.repo.GetClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if err := requireActiveParent(client.Active, "client", client.Acronym); err != nil {
		return nil, err
	}

	now := s.now()
	d := &model.Development{
		ID:        s.newID(),
		ClientID:  client.ID,
		Status:    model.DevelopmentCreated,
		Active:    true,
		CreatedAt: now,
	}
	applyDevelopmentInput(d, in, now)

	prefix := workflow.DevelopmentPrefix(now.Year(), client.Acronym)
	for attempt := 1; attempt <= referenceAttempts; attempt++ {
		last, err := s.repo.LastDevelopmentReference(ctx, prefix)
		if err != nil {
			return nil, err
		}
		seq, err := workflow.NextSequence(last, prefix)
		if err != nil {
			return nil, apperror.ErrReferenceConflict.Wrap(err)
		}
		d.Reference = workflow.DevelopmentReference(prefix, seq)

		err = s.repo.CreateDevelopment(ctx, d)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, apperror.ErrReferenceConflict) {
			return nil, err
		}
		s.logger.Debug("development reference taken, retrying",
			zap.String("reference", d.Reference), zap.Int("attempt", attempt))
	}
	return nil, apperror.ErrReferenceConflict
}

// UpdateDevelopment заменяет описательные поля. Клиент и код reference не меняются.
func (s *Service) UpdateDevelopment(ctx context.Context, id uuid.UUID, in model.DevelopmentInput) (*model.Development, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	d, err := s.repo.GetDevelopment(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ClientID != d.ClientID {
		return nil, immutableField("clientId")
	}
	applyDevelopmentInput(d, in, s.now())

	if err := s.repo.UpdateDevelopment(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetDevelopmentStatus меняет статус согласования по таблице допустимых переходов.
func (s *Service) SetDevelopmentStatus(ctx context.Context, id uuid.UUID, in model.StatusInput) (*model.Development, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	d, err := s.repo.GetDevelopment(ctx, id)
	if err != nil {
		return nil, err
	}

	status := model.DevelopmentStatus(strings.ToUpper(in.Status))
	if err := workflow.CheckDevelopmentStatusChange(d.Status, status); err != nil {
		return nil, err
	}
	if status == d.Status {
		return d, nil
	}

	d.Status = status
	d.UpdatedAt = s.now()
	if err := s.repo.UpdateDevelopment(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func applyDevelopmentInput(d *model.Development, in model.DevelopmentInput, now time.Time) {
	d.Description = strings.TrimSpace(in.Description)
	d.ClientReference = strings.TrimSpace(in.ClientReference)
	d.PieceImageURL = in.PieceImageURL
	d.Variants = in.Variants
	if d.Variants == nil {
		d.Variants = []string{}
	}
	d.Notes = in.Notes
	d.UpdatedAt = now
}

func immutableField(name string) error {
	return apperror.ErrValidation.
		Withf("%s cannot be changed", name).
		WithFields([]apperror.FieldError{{Field: name, Message: name + " cannot be changed"}})
}
