package handler

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/authz"
	"github.com/mmeshcher/printflow/internal/model"
)

var errTokenMissing = apperror.ErrTokenMissing

type envelope struct {
	Success    bool                  `json:"success"`
	Code       int                   `json:"code,omitempty"`
	Error      string                `json:"error,omitempty"`
	Message    string                `json:"message,omitempty"`
	Data       any                   `json:"data,omitempty"`
	Errors     []apperror.FieldError `json:"errors,omitempty"`
	Pagination *pagination           `json:"pagination,omitempty"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func errAccessDenied(resource model.Entity, action authz.Action) error {
	return apperror.ErrAccessDenied.Withf("role is not allowed to %s %s", action, resource)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data any) {
	h.writeJSON(w, status, envelope{Success: true, Data: data})
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, message string, data any) {
	h.writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writePage[T any](h *Handler, w http.ResponseWriter, q model.ListQuery, page model.Page[T]) {
	q = q.Normalize()
	items := page.Items
	if items == nil {
		items = []T{}
	}
	h.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    items,
		Pagination: &pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: page.Total,
			Pages: model.Pages(page.Total, q.Limit),
		},
	})
}

// writeError отдаёт ошибку в едином формате. Текст системных ошибок
// раскрывается только в режиме разработки.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperror.Classify(err)

	message := e.Message
	if e.Internal() {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("code", e.Code),
			zap.Error(err),
		)
		if base, ok := apperror.Lookup(e.Code); ok {
			message = base.Message
		}
		if h.cfg != nil && h.cfg.IsDevelopment() {
			message = err.Error()
		}
	} else {
		h.logger.Debug("request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("code", e.Code),
			zap.String("message", e.Message),
		)
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		message = "request body is too large"
	}

	h.writeJSON(w, e.Status, envelope{
		Success: false,
		Code:    e.Code,
		Error:   e.Name,
		Message: message,
		Errors:  e.Fields,
	})
}
