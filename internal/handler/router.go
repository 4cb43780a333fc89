package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/authz"
	custommiddleware "github.com/mmeshcher/printflow/internal/middleware"
	"github.com/mmeshcher/printflow/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса printflow.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(custommiddleware.Metrics)
	r.Use(custommiddleware.Gzip(h.writeError))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Encoding"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if h.cfg.RateLimitRequests > 0 {
			r.Use(httprate.Limit(
				h.cfg.RateLimitRequests,
				h.cfg.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					h.writeError(w, r, apperror.ErrRateLimited)
				}),
			))
		}

		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.Middleware)
				r.Get("/me", h.Me)
				r.Put("/password", h.ChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Route("/users", h.userRoutes)
			r.Route("/clients", h.clientRoutes)
			r.Route("/developments", h.developmentRoutes)
			r.Route("/production-orders", h.productionOrderRoutes)
			r.Route("/production-sheets", h.productionSheetRoutes)
			r.Route("/delivery-sheets", h.deliverySheetRoutes)
			r.Route("/production-receipts", h.productionReceiptRoutes)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, apperror.ErrRouteNotFound.Withf("route %s %s not found", r.Method, r.URL.Path))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, apperror.ErrMethodNotAllowed)
	})

	return r
}

// lifecycleRoutes регистрирует маршруты, общие для всех ресурсов.
func (h *Handler) lifecycleRoutes(r chi.Router, entity model.Entity) {
	r.With(h.authorize(entity, authz.ActionRead)).Get("/stats", h.Stats(entity))
	r.With(h.authorize(entity, authz.ActionDelete)).Delete("/{id}", h.Deactivate(entity))
	r.With(h.authorize(entity, authz.ActionDelete)).Post("/{id}/activate", h.Activate(entity))
}

func (h *Handler) userRoutes(r chi.Router) {
	e := model.EntityUser
	h.lifecycleRoutes(r, e)
	r.With(h.authorize(e, authz.ActionRead)).Get("/", listHandler(h, h.service.ListUsers))
	r.With(h.authorize(e, authz.ActionRead)).Get("/{id}", getHandler(h, h.service.GetUser))
	r.With(h.authorize(e, authz.ActionCreate)).Post("/", createHandler(h, h.service.CreateUser))
	r.With(h.authorize(e, authz.ActionUpdate)).Put("/{id}", updateHandler(h, h.UpdateUser))
	r.With(h.authorize(e, authz.ActionUpdate)).Post("/{id}/unlock", h.UnlockUser)
}

func (h *Handler) clientRoutes(r chi.Router) {
	e := model.EntityClient
	h.lifecycleRoutes(r, e)
	r.With(h.authorize(e, authz.ActionRead)).Get("/", listHandler(h, h.service.ListClients))
	r.With(h.authorize(e, authz.ActionRead)).Get("/{id}", getHandler(h, h.service.GetClient))
	r.With(h.authorize(e, authz.ActionCreate)).Post("/", createHandler(h, h.service.CreateClient))
	r.With(h.authorize(e, authz.ActionUpdate)).Put("/{id}", updateHandler(h, h.service.UpdateClient))
}

func (h *Handler) developmentRoutes(r chi.Router) {
	e := model.EntityDevelopment
	h.lifecycleRoutes(r, e)
	r.With(h.authorize(e, authz.ActionRead)).Get("/", listHandler(h, h.service.ListDevelopments))
	r.With(h.authorize(e, authz.ActionRead)).Get("/by-client/{clientId}",
		byParentHandler(h, "clientId", "clientId", h.service.ListDevelopments))
	r.With(h.authorize(e, authz.ActionRead)).Get("/{id}", getHandler(h, h.service.GetDevelopment))
	r.With(h.authorize(e, authz.ActionCreate)).Post("/", createHandler(h, h.service.CreateDevelopment))
	r.With(h.authorize(e, authz.ActionUpdate)).Put("/{id}", updateHandler(h, h.service.UpdateDevelopment))
	r.With(h.authorize(e, authz.ActionStatus)).Patch("/{id}/status", updateHandler(h, h.service.SetDevelopmentStatus))
}

func (h *Handler) productionOrderRoutes(r chi.Router) {
	e := model.EntityProductionOrder
	h.lifecycleRoutes(r, e)
	r.With(h.authorize(e, authz.ActionRead)).Get("/", listHandler(h, h.service.ListProductionOrders))
	r.With(h.authorize(e, authz.ActionRead)).Get("/by-development/{developmentId}",
		byParentHandler(h, "developmentId", "developmentId", h.service.ListProductionOrders))
	r.With(h.authorize(e, authz.ActionRead)).Get("/{id}", getHandler(h, h.service.GetProductionOrder))
	r.With(h.authorize(e, authz.ActionCreate)).Post("/", createHandler(h, h.service.CreateProductionOrder))
	r.With(h.authorize(e, authz.ActionUpdate)).Put("/{id}", updateHandler(h, h.service.UpdateProductionOrder))
	r.With(h.authorize(e, authz.ActionStatus)).Patch("/{id}/status", updateHandler(h, h.service.SetProductionOrderStatus))
}

func (h *Handler) productionSheetRoutes(r chi.Router) {
	e := model.EntityProductionSheet
	h.lifecycleRoutes(r, e)
	r.With(h.authorize(e, authz.ActionRead)).Get("/", listHandler(h, h.service.ListProductionSheets))
	r.With(h.authorize(e, authz.ActionRead)).Get("/by-production-order/{productionOrderId}",
		byParentHandler(h, "productionOrderId", "productionOrderId", h.service.ListProductionSheets))
	r.With(h.authorize(e, authz.ActionRead)).Get("/{id}", getHandler(h, h.service.GetProductionSheet))
	r.With(h.authorize(e, authz.ActionCreate)).Post("/", createHandler(h, h.service.CreateProductionSheet))
	r.With(h.authorize(e, authz.ActionUpdate)).Put("/{id}", h.UpdateProductionSheet)
	r.With(h.authorize(e, authz.ActionStatus)).Patch("/{id}/stage", updateHandler(h, h.SetProductionSheetStage))
	r.With(h.authorize(e, authz.ActionStatus)).Post("/{id}/advance-stage", h.AdvanceProductionSheetStage)
}

func (h *Handler) deliverySheetRoutes(r chi.Router) {
	e := model.EntityDeliverySheet
	h.lifecycleRoutes(r, e)
	r.With(h.authorize(e, authz.ActionRead)).Get("/", listHandler(h, h.service.ListDeliverySheets))
	r.With(h.authorize(e, authz.ActionRead)).Get("/by-production-sheet/{productionSheetId}",
		byParentHandler(h, "productionSheetId", "productionSheetId", h.service.ListDeliverySheets))
	r.With(h.authorize(e, authz.ActionRead)).Get("/{id}", getHandler(h, h.service.GetDeliverySheet))
	r.With(h.authorize(e, authz.ActionCreate)).Post("/", createHandler(h, h.service.CreateDeliverySheet))
	r.With(h.authorize(e, authz.ActionUpdate)).Put("/{id}", updateHandler(h, h.service.UpdateDeliverySheet))
	r.With(h.authorize(e, authz.ActionStatus)).Patch("/{id}/status", updateHandler(h, h.service.SetDeliveryStatus))
}

func (h *Handler) productionReceiptRoutes(r chi.Router) {
	e := model.EntityProductionReceipt
	h.lifecycleRoutes(r, e)
	r.With(h.authorize(e, authz.ActionRead)).Get("/", listHandler(h, h.service.ListProductionReceipts))
	r.With(h.authorize(e, authz.ActionRead)).Get("/by-production-order/{productionOrderId}",
		byParentHandler(h, "productionOrderId", "productionOrderId", h.service.ListProductionReceipts))
	r.With(h.authorize(e, authz.ActionRead)).Get("/{id}", getHandler(h, h.service.GetProductionReceipt))
	r.With(h.authorize(e, authz.ActionCreate)).Post("/", createHandler(h, h.service.CreateProductionReceipt))
	r.With(h.authorize(e, authz.ActionUpdate)).Put("/{id}", updateHandler(h, h.service.UpdateProductionReceipt))
	r.With(h.authorize(e, authz.ActionStatus)).Patch("/{id}/status", updateHandler(h, h.service.SetReceiptStatus))
	r.With(h.authorize(e, authz.ActionUpdate)).Patch("/{id}/payment", updateHandler(h, h.service.RegisterPayment))
}
