package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/validation"
)

// ListUsers возвращает страницу пользователей.
func (s *Service) ListUsers(ctx context.Context, q model.ListQuery) (model.Page[model.User], error) {
	return s.repo.ListUsers(ctx, q)
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(ctx context.Context, key string) (*model.User, error) {
	return lookup[model.User](ctx, key, s.repo.GetUser, nil)
}

// CreateUser создаёт пользователя с произвольной ролью.
func (s *Service) CreateUser(ctx context.Context, in model.UserCreateInput) (*model.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.createUser(ctx, in.Name, in.Email, in.Password, in.Role)
}

// UpdateUser меняет имя, email и роль. Администратор не может понизить себя.
func (s *Service) UpdateUser(ctx context.Context, actor *model.User, id uuid.UUID, in model.UserUpdateInput) (*model.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if actor.ID == id && in.Role != actor.Role {
		return nil, apperror.ErrSelfModification
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Name = strings.TrimSpace(in.Name)
	u.Email = normalizeEmail(in.Email)
	u.Role = in.Role
	u.UpdatedAt = s.now()

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UnlockUser снимает блокировку входа.
func (s *Service) UnlockUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := s.repo.UnlockUser(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, id)
}
