package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/validation"
)

// ListClients возвращает страницу клиентов.
func (s *Service) ListClients(ctx context.Context, q model.ListQuery) (model.Page[model.Client], error) {
	return s.repo.ListClients(ctx, q)
}

// GetClient возвращает клиента. У клиентов нет кода reference, поиск только по идентификатору.
func (s *Service) GetClient(ctx context.Context, key string) (*model.Client, error) {
	return lookup[model.Client](ctx, key, s.repo.GetClient, nil)
}

// CreateClient создаёт клиента. Налоговый номер хранится только цифрами.
func (s *Service) CreateClient(ctx context.Context, in model.ClientInput) (*model.Client, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	c := &model.Client{
		ID:        s.newID(),
		Active:    true,
		CreatedAt: now,
	}
	applyClientInput(c, in, now)

	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateClient заменяет данные клиента.
func (s *Service) UpdateClient(ctx context.Context, id uuid.UUID, in model.ClientInput) (*model.Client, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClientInput(c, in, s.now())

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func applyClientInput(c *model.Client, in model.ClientInput, now time.Time) {
	c.CompanyName = strings.TrimSpace(in.CompanyName)
	c.Acronym = strings.ToUpper(in.Acronym)
	c.TaxID = validation.NormalizeTaxID(in.TaxID)
	c.Contact = in.Contact
	c.Address = in.Address
	c.Address.State = strings.ToUpper(c.Address.State)
	c.RotaryPrice = in.RotaryPrice
	c.LocalizedPrice = in.LocalizedPrice
	c.Notes = in.Notes
	c.UpdatedAt = now
}
