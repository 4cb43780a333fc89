package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/authz"
	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/token"
	"github.com/mmeshcher/printflow/internal/validation"
)

// AuthResult возвращается при регистрации, входе и обновлении токенов.
type AuthResult struct {
	User   *model.User `json:"user"`
	Tokens token.Pair  `json:"tokens"`
}

// Profile описывает текущего пользователя и доступные ему разделы.
type Profile struct {
	User        *model.User                     `json:"user"`
	Resources   []model.Entity                  `json:"resources"`
	Permissions map[model.Entity][]authz.Action `json:"permissions"`
}

func (s *Service) hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(fmt.Errorf("hash password: %w", err))
	}
	return hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт пользователя с ролью DEFAULT и выпускает для него токены.
func (s *Service) Register(ctx context.Context, in model.RegisterInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.createUser(ctx, in.Name, in.Email, in.Password, model.RoleDefault)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(u.ID)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	return &AuthResult{User: u, Tokens: pair}, nil
}

func (s *Service) createUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &model.User{
		ID:           s.newID(),
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login проверяет учётные данные. Неверный пароль увеличивает счётчик попыток,
// по достижении порога учётная запись блокируется на LockDuration.
func (s *Service) Login(ctx context.Context, in model.LoginInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, apperror.ErrUserRecordNotFound) {
		return nil, apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !u.Active {
		return nil, apperror.ErrAccountDisabled
	}
	if u.IsLocked(now) {
		return nil, lockedError(u)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.Password)); err != nil {
		return nil, s.failLogin(ctx, u, now)
	}

	if err := s.repo.RecordLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.LastLogin = &now

	pair, err := s.tokens.IssuePair(u.ID)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	return &AuthResult{User: u, Tokens: pair}, nil
}

func (s *Service) failLogin(ctx context.Context, u *model.User, now time.Time) error {
	loginFailures.Inc()

	updated, err := s.repo.RecordFailedLogin(ctx, u.ID, now, s.cfg.MaxLoginAttempts, now.Add(s.cfg.LockDuration))
	if err != nil {
		return err
	}
	if updated.IsLocked(now) {
		accountLockouts.Inc()
		s.logger.Warn("account locked after failed logins",
			zap.String("user_id", u.ID.String()),
			zap.Int("attempts", updated.LoginAttempts),
			zap.Time("lock_until", *updated.LockUntil),
		)
		return lockedError(updated)
	}
	return apperror.ErrInvalidCredentials
}

func lockedError(u *model.User) error {
	return apperror.ErrAccountLocked.Withf("account is locked until %s", u.LockUntil.UTC().Format(time.RFC3339))
}

// Refresh выпускает новую пару токенов по токену обновления.
func (s *Service) Refresh(ctx context.Context, in model.RefreshInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	id, err := s.tokens.ParseRefresh(in.RefreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.usableUser(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now

	pair, err := s.tokens.IssuePair(u.ID)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	return &AuthResult{User: u, Tokens: pair}, nil
}

// Authenticate проверяет токен доступа и загружает пользователя.
// Пользователь должен существовать, быть активным и не заблокированным.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	id, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}
	return s.usableUser(ctx, id)
}

func (s *Service) usableUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, apperror.ErrUserRecordNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, apperror.ErrAccountDisabled
	}
	if u.IsLocked(s.now()) {
		return nil, lockedError(u)
	}
	return u, nil
}

// Me возвращает профиль текущего пользователя с его разрешениями.
func (s *Service) Me(_ context.Context, actor *model.User) *Profile {
	return &Profile{
		User:        actor,
		Resources:   s.enforcer.Resources(actor.Role),
		Permissions: s.enforcer.Permissions(actor.Role),
	}
}

// ChangePassword меняет пароль текущего пользователя после проверки старого.
func (s *Service) ChangePassword(ctx context.Context, actor *model.User, in model.ChangePasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	u, err := s.repo.GetUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.CurrentPassword)); err != nil {
		return apperror.ErrInvalidCredentials.Withf("current password is incorrect")
	}

	hash, err := s.hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, hash, s.now())
}

// EnsureAdmin создаёт администратора из конфигурации, если активного администратора ещё нет.
func (s *Service) EnsureAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}

	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if len(s.cfg.AdminPassword) < 8 {
		return errors.New("ADMIN_PASSWORD must be at least 8 characters")
	}

	u, err := s.createUser(ctx, s.cfg.AdminName, s.cfg.AdminEmail, s.cfg.AdminPassword, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("administrator account created", zap.String("email", u.Email))
	return nil
}
