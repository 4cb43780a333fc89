// Package middleware содержит HTTP middleware для сервиса printflow.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

type contextKey string

const (
	userKey     contextKey = "user"
	userSlotKey contextKey = "user-slot"
)

// userSlot передаёт пользователя из AuthMiddleware во внешний Logger,
// который видит только исходный контекст запроса.
type userSlot struct {
	user *model.User
}

const bearerPrefix = "Bearer "

// Authenticator проверяет токен доступа и возвращает пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

// ErrorWriter записывает ошибку в ответ в принятом в API формате.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// AuthMiddleware выполняет проверку аутентификации по заголовку Authorization.
type AuthMiddleware struct {
	auth    Authenticator
	onError ErrorWriter
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware.
// Если onError не задан, ошибка отдаётся текстом со статусом из каталога.
func NewAuthMiddleware(auth Authenticator, onError ErrorWriter) *AuthMiddleware {
	if onError == nil {
		onError = plainError
	}
	return &AuthMiddleware{
		auth:    auth,
		onError: onError,
	}
}

// Middleware проверяет токен и добавляет пользователя в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := bearerToken(r)
		if !ok {
			a.onError(w, r, apperror.ErrTokenMissing)
			return
		}

		user, err := a.auth.Authenticate(r.Context(), tok)
		if err != nil {
			a.onError(w, r, err)
			return
		}

		if slot, ok := r.Context().Value(userSlotKey).(*userSlot); ok {
			slot.user = user
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(bearerPrefix):])
	return tok, tok != ""
}

func plainError(w http.ResponseWriter, _ *http.Request, err error) {
	e := apperror.Classify(err)
	http.Error(w, e.Message, e.Status)
}

// WithUser возвращает контекст с аутентифицированным пользователем.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext извлекает пользователя из контекста запроса.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}
