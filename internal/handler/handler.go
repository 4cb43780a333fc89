// Package handler содержит HTTP-обработчики API сервиса printflow.
package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/printflow/internal/authz"
	"github.com/mmeshcher/printflow/internal/config"
	"github.com/mmeshcher/printflow/internal/middleware"
	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	Register(ctx context.Context, in model.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, in model.LoginInput) (*service.AuthResult, error)
	Refresh(ctx context.Context, in model.RefreshInput) (*service.AuthResult, error)
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
	Me(ctx context.Context, actor *model.User) *service.Profile
	ChangePassword(ctx context.Context, actor *model.User, in model.ChangePasswordInput) error

	ListUsers(ctx context.Context, q model.ListQuery) (model.Page[model.User], error)
	GetUser(ctx context.Context, key string) (*model.User, error)
	CreateUser(ctx context.Context, in model.UserCreateInput) (*model.User, error)
	UpdateUser(ctx context.Context, actor *model.User, id uuid.UUID, in model.UserUpdateInput) (*model.User, error)
	UnlockUser(ctx context.Context, id uuid.UUID) (*model.User, error)

	ListClients(ctx context.Context, q model.ListQuery) (model.Page[model.Client], error)
	GetClient(ctx context.Context, key string) (*model.Client, error)
	CreateClient(ctx context.Context, in model.ClientInput) (*model.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, in model.ClientInput) (*model.Client, error)

	ListDevelopments(ctx context.Context, q model.ListQuery) (model.Page[model.Development], error)
	GetDevelopment(ctx context.Context, key string) (*model.Development, error)
	CreateDevelopment(ctx context.Context, in model.DevelopmentInput) (*model.Development, error)
	UpdateDevelopment(ctx context.Context, id uuid.UUID, in model.DevelopmentInput) (*model.Development, error)
	SetDevelopmentStatus(ctx context.Context, id uuid.UUID, in model.StatusInput) (*model.Development, error)

	ListProductionOrders(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionOrder], error)
	GetProductionOrder(ctx context.Context, key string) (*model.ProductionOrder, error)
	CreateProductionOrder(ctx context.Context, in model.ProductionOrderInput) (*model.ProductionOrder, error)
	UpdateProductionOrder(ctx context.Context, id uuid.UUID, in model.ProductionOrderInput) (*model.ProductionOrder, error)
	SetProductionOrderStatus(ctx context.Context, id uuid.UUID, in model.StatusInput) (*model.ProductionOrder, error)

	ListProductionSheets(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionSheet], error)
	GetProductionSheet(ctx context.Context, key string) (*model.ProductionSheet, error)
	CreateProductionSheet(ctx context.Context, in model.ProductionSheetInput) (*model.ProductionSheet, error)
	UpdateProductionSheet(ctx context.Context, actor *model.User, id uuid.UUID, fields map[string]any) (*model.ProductionSheet, error)
	SetProductionSheetStage(ctx context.Context, actor *model.User, id uuid.UUID, in model.StageInput) (*model.ProductionSheet, error)
	AdvanceProductionSheetStage(ctx context.Context, actor *model.User, id uuid.UUID) (*model.ProductionSheet, error)

	ListDeliverySheets(ctx context.Context, q model.ListQuery) (model.Page[model.DeliverySheet], error)
	GetDeliverySheet(ctx context.Context, key string) (*model.DeliverySheet, error)
	CreateDeliverySheet(ctx context.Context, in model.DeliverySheetInput) (*model.DeliverySheet, error)
	UpdateDeliverySheet(ctx context.Context, id uuid.UUID, in model.DeliverySheetInput) (*model.DeliverySheet, error)
	SetDeliveryStatus(ctx context.Context, id uuid.UUID, in model.StatusInput) (*model.DeliverySheet, error)

	ListProductionReceipts(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionReceipt], error)
	GetProductionReceipt(ctx context.Context, key string) (*model.ProductionReceipt, error)
	CreateProductionReceipt(ctx context.Context, in model.ProductionReceiptInput) (*model.ProductionReceipt, error)
	UpdateProductionReceipt(ctx context.Context, id uuid.UUID, in model.ProductionReceiptInput) (*model.ProductionReceipt, error)
	SetReceiptStatus(ctx context.Context, id uuid.UUID, in model.StatusInput) (*model.ProductionReceipt, error)
	RegisterPayment(ctx context.Context, id uuid.UUID, in model.PaymentInput) (*model.ProductionReceipt, error)

	Deactivate(ctx context.Context, actor *model.User, entity model.Entity, id uuid.UUID) error
	Activate(ctx context.Context, entity model.Entity, id uuid.UUID) error
	Stats(ctx context.Context, entity model.Entity) (*model.Stats, error)
}

// Handler реализует HTTP-обработчики API сервиса printflow.
type Handler struct {
	service        Service
	logger         *zap.Logger
	cfg            *config.Config
	enforcer       *authz.Enforcer
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, cfg *config.Config, enforcer *authz.Enforcer) *Handler {
	h := &Handler{
		service:  s,
		logger:   logger,
		cfg:      cfg,
		enforcer: enforcer,
	}
	h.authMiddleware = middleware.NewAuthMiddleware(s, h.writeError)
	return h
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health сообщает о состоянии сервиса и доступности базы данных.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, envelope{
			Success: false,
			Message: "database unavailable",
			Data:    healthResponse{Status: "degraded", Database: "down"},
		})
		return
	}
	h.writeData(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
}

// authorize пропускает запрос, если роли пользователя разрешено действие над ресурсом.
func (h *Handler) authorize(resource model.Entity, action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := middleware.UserFromContext(r.Context())
			if !ok {
				h.writeError(w, r, errTokenMissing)
				return
			}
			if !h.enforcer.Allow(u.Role, resource, action) {
				h.logger.Info("access denied",
					zap.String("user_id", u.ID.String()),
					zap.String("role", string(u.Role)),
					zap.String("resource", string(resource)),
					zap.String("action", string(action)),
				)
				h.writeError(w, r, errAccessDenied(resource, action))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func actor(r *http.Request) *model.User {
	return userFrom(r.Context())
}

func userFrom(ctx context.Context) *model.User {
	u, _ := middleware.UserFromContext(ctx)
	return u
}
