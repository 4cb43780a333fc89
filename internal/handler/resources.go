package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

func listHandler[T any](h *Handler, fn func(context.Context, model.ListQuery) (model.Page[T], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseListQuery(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		page, err := fn(r.Context(), q)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writePage(h, w, q, page)
	}
}

// byParentHandler отдаёт список записей, принадлежащих родителю из пути.
func byParentHandler[T any](h *Handler, param, filterKey string,
	fn func(context.Context, model.ListQuery) (model.Page[T], error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, err := pathID(r, param)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		q, err := parseListQuery(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		q.Filters[filterKey] = parentID.String()

		page, err := fn(r.Context(), q)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writePage(h, w, q, page)
	}
}

// getHandler принимает в пути идентификатор или номер записи.
func getHandler[T any](h *Handler, fn func(context.Context, string) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeData(w, http.StatusOK, v)
	}
}

func createHandler[T, In any](h *Handler, fn func(context.Context, In) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := h.decodeJSON(w, r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}

		v, err := fn(r.Context(), in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeMessage(w, http.StatusCreated, "created", v)
	}
}

// updateHandler разбирает идентификатор и тело, затем вызывает fn.
// Используется для PUT, смены статуса и регистрации платежа.
func updateHandler[T, In any](h *Handler, fn func(context.Context, uuid.UUID, In) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		var in In
		if err := h.decodeJSON(w, r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}

		v, err := fn(r.Context(), id, in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeMessage(w, http.StatusOK, "updated", v)
	}
}

// Deactivate выполняет мягкое удаление записи.
func (h *Handler) Deactivate(entity model.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		if err := h.service.Deactivate(r.Context(), actor(r), entity, id); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeMessage(w, http.StatusOK, "deactivated", nil)
	}
}

// Activate восстанавливает ранее деактивированную запись.
func (h *Handler) Activate(entity model.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		if err := h.service.Activate(r.Context(), entity, id); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeMessage(w, http.StatusOK, "activated", nil)
	}
}

// Stats отдаёт сводку по сущности.
func (h *Handler) Stats(entity model.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.service.Stats(r.Context(), entity)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeData(w, http.StatusOK, stats)
	}
}

// UpdateUser меняет имя, email или роль пользователя.
func (h *Handler) UpdateUser(ctx context.Context, id uuid.UUID, in model.UserUpdateInput) (*model.User, error) {
	return h.service.UpdateUser(ctx, userFrom(ctx), id, in)
}

// UnlockUser снимает блокировку входа и сбрасывает счётчик неудачных попыток.
func (h *Handler) UnlockUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.service.UnlockUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("user unlocked",
		zap.String("user_id", u.ID.String()),
		zap.String("by", actor(r).ID.String()),
	)
	h.writeMessage(w, http.StatusOK, "user unlocked", u)
}

// UpdateProductionSheet принимает частичное обновление листа. Тело читается
// как набор полей, чтобы сервис мог сравнить их с сохранёнными значениями.
func (h *Handler) UpdateProductionSheet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var fields map[string]any
	if err := h.decodeJSON(w, r, &fields); err != nil {
		h.writeError(w, r, err)
		return
	}
	if fields == nil {
		h.writeError(w, r, apperror.ErrInvalidBody.Withf("request body must be a JSON object"))
		return
	}

	sheet, err := h.service.UpdateProductionSheet(r.Context(), actor(r), id, fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeMessage(w, http.StatusOK, "updated", sheet)
}

// SetProductionSheetStage переводит лист на явно указанный следующий этап.
func (h *Handler) SetProductionSheetStage(ctx context.Context, id uuid.UUID, in model.StageInput) (*model.ProductionSheet, error) {
	return h.service.SetProductionSheetStage(ctx, userFrom(ctx), id, in)
}

// AdvanceProductionSheetStage переводит лист на следующий этап.
func (h *Handler) AdvanceProductionSheetStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sheet, err := h.service.AdvanceProductionSheetStage(r.Context(), actor(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeMessage(w, http.StatusOK, "stage advanced", sheet)
}
