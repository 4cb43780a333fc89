// Package service реализует бизнес-логику сервиса printflow.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/authz"
	"github.com/mmeshcher/printflow/internal/config"
	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/token"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
// Вызовы с контекстом, полученным внутри WithinTx, выполняются в одной транзакции.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	SetActive(ctx context.Context, entity model.Entity, id uuid.UUID, active bool, at time.Time) error
	HasActiveChild(ctx context.Context, entity model.Entity, parentID, exclude uuid.UUID) (bool, error)
	CountActive(ctx context.Context, entity model.Entity) (int, int, error)
	CountBy(ctx context.Context, entity model.Entity, field string) (map[string]int, error)

	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, q model.ListQuery) (model.Page[model.User], error)
	UpdateUser(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte, at time.Time) error
	RecordFailedLogin(ctx context.Context, id uuid.UUID, at time.Time, maxAttempts int, lockUntil time.Time) (*model.User, error)
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UnlockUser(ctx context.Context, id uuid.UUID, at time.Time) error
	AdminExists(ctx context.Context) (bool, error)

	CreateClient(ctx context.Context, c *model.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListClients(ctx context.Context, q model.ListQuery) (model.Page[model.Client], error)
	UpdateClient(ctx context.Context, c *model.Client) error

	CreateDevelopment(ctx context.Context, d *model.Development) error
	GetDevelopment(ctx context.Context, id uuid.UUID) (*model.Development, error)
	GetDevelopmentByReference(ctx context.Context, ref string) (*model.Development, error)
	ListDevelopments(ctx context.Context, q model.ListQuery) (model.Page[model.Development], error)
	UpdateDevelopment(ctx context.Context, d *model.Development) error
	LastDevelopmentReference(ctx context.Context, prefix string) (string, error)

	CreateProductionOrder(ctx context.Context, o *model.ProductionOrder) error
	GetProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error)
	GetProductionOrderByReference(ctx context.Context, ref string) (*model.ProductionOrder, error)
	ListProductionOrders(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionOrder], error)
	UpdateProductionOrder(ctx context.Context, o *model.ProductionOrder) error
	SetProductionOrderStatus(ctx context.Context, id uuid.UUID, status model.ProductionOrderStatus, at time.Time) error

	CreateProductionSheet(ctx context.Context, s *model.ProductionSheet) error
	GetProductionSheet(ctx context.Context, id uuid.UUID) (*model.ProductionSheet, error)
	GetProductionSheetForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductionSheet, error)
	GetProductionSheetByReference(ctx context.Context, ref string) (*model.ProductionSheet, error)
	ListProductionSheets(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionSheet], error)
	UpdateProductionSheet(ctx context.Context, s *model.ProductionSheet) error

	CreateDeliverySheet(ctx context.Context, d *model.DeliverySheet) error
	GetDeliverySheet(ctx context.Context, id uuid.UUID) (*model.DeliverySheet, error)
	GetDeliverySheetByReference(ctx context.Context, ref string) (*model.DeliverySheet, error)
	ListDeliverySheets(ctx context.Context, q model.ListQuery) (model.Page[model.DeliverySheet], error)
	UpdateDeliverySheet(ctx context.Context, d *model.DeliverySheet) error

	CreateProductionReceipt(ctx context.Context, p *model.ProductionReceipt) error
	GetProductionReceipt(ctx context.Context, id uuid.UUID) (*model.ProductionReceipt, error)
	GetProductionReceiptByReference(ctx context.Context, ref string) (*model.ProductionReceipt, error)
	ListProductionReceipts(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionReceipt], error)
	UpdateProductionReceipt(ctx context.Context, p *model.ProductionReceipt) error
	ReceiptTotals(ctx context.Context) (model.ReceiptTotals, error)
}

// Service содержит бизнес-логику сервиса printflow.
type Service struct {
	repo     Repository
	cfg      *config.Config
	logger   *zap.Logger
	tokens   *token.Manager
	enforcer *authz.Enforcer
	events   *Dispatcher

	now   func() time.Time
	newID func() uuid.UUID
}

// NewService создаёт сервис и подписывает обработчики доменных событий.
func NewService(repo Repository, cfg *config.Config, logger *zap.Logger, tokens *token.Manager, enforcer *authz.Enforcer) *Service {
	s := &Service{
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
		tokens:   tokens,
		enforcer: enforcer,
		events:   NewDispatcher(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
	}
	s.events.Subscribe(EventStageFinished, s.finalizeProductionOrder)
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// lookup разбирает ключ как идентификатор или как код reference.
// Идентификатором считается только каноническая запись UUID.
func lookup[T any](ctx context.Context, key string,
	byID func(context.Context, uuid.UUID) (*T, error),
	byRef func(context.Context, string) (*T, error),
) (*T, error) {
	if id, ok := parseStrictID(key); ok {
		return byID(ctx, id)
	}
	if byRef == nil {
		return nil, apperror.ErrInvalidID
	}
	return byRef(ctx, key)
}

func parseStrictID(key string) (uuid.UUID, bool) {
	if len(key) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(key)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func requireActiveParent(active bool, what, ref string) error {
	if !active {
		return apperror.ErrParentInactive.Withf("%s %s is inactive", what, ref)
	}
	return nil
}
