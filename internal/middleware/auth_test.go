package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

type stubAuthenticator struct {
	user *model.User
	err  error
	got  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, tok string) (*model.User, error) {
	s.got = tok
	return s.user, s.err
}

func TestAuthMiddleware_WithValidToken(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.RoleDefault, Active: true}
	auth := &stubAuthenticator{user: user}
	m := NewAuthMiddleware(auth, nil)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		got, ok := UserFromContext(r.Context())
		require.True(t, ok, "user not in context")
		assert.Equal(t, user.ID, got.ID)
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "bearer  abc.def.ghi ")
	w := httptest.NewRecorder()

	m.Middleware(next).ServeHTTP(w, r)

	assert.True(t, nextCalled, "next handler was not called")
	assert.Equal(t, "abc.def.ghi", auth.got)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		authErr    error
		wantStatus int
	}{
		{name: "no header", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer x", authErr: apperror.ErrTokenExpired, wantStatus: http.StatusUnauthorized},
		{name: "locked", header: "Bearer x", authErr: apperror.ErrAccountLocked, wantStatus: http.StatusLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(&stubAuthenticator{err: tt.authErr}, nil)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("next handler should not be called")
			})

			r := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			m.Middleware(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Result().StatusCode)
		})
	}
}

func TestAuthMiddleware_CustomErrorWriter(t *testing.T) {
	var got error
	m := NewAuthMiddleware(&stubAuthenticator{}, func(w http.ResponseWriter, _ *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	m.Middleware(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.ErrorIs(t, got, apperror.ErrTokenMissing)
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserFromContext(WithUser(context.Background(), nil))
	assert.False(t, ok)
}
