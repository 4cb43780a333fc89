package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/printflow/internal/model"
)

// Register обрабатывает регистрацию нового пользователя с ролью DEFAULT.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", res.User.ID.String()))
	h.writeMessage(w, http.StatusCreated, "user registered", res)
}

// Login обрабатывает вход по email и паролю.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in model.LoginInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "login successful", res)
}

// Refresh выдаёт новую пару токенов по токену обновления.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in model.RefreshInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.Refresh(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, res)
}

// Me возвращает профиль текущего пользователя с доступными ему разделами.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, http.StatusOK, h.service.Me(r.Context(), actor(r)))
}

// ChangePassword меняет пароль текущего пользователя.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in model.ChangePasswordInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), actor(r), in); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "password changed", nil)
}
