// Package token выпускает и проверяет JWT-токены доступа и обновления.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/config"
)

// Kind различает токены доступа и обновления.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims описывает содержимое токена.
type Claims struct {
	Type Kind `json:"typ"`
	jwt.RegisteredClaims
}

// Pair содержит пару токенов, выдаваемую при входе и обновлении.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Manager подписывает и проверяет токены алгоритмом HS256.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewManager создаёт менеджер токенов по настройкам сервиса.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		now:           time.Now,
	}
}

// IssuePair выпускает токены доступа и обновления для пользователя.
func (m *Manager) IssuePair(userID uuid.UUID) (Pair, error) {
	access, err := m.sign(userID, KindAccess, m.accessSecret, m.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.sign(userID, KindRefresh, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL / time.Second),
	}, nil
}

func (m *Manager) sign(userID uuid.UUID, kind Kind, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// ParseAccess проверяет токен доступа и возвращает идентификатор пользователя.
func (m *Manager) ParseAccess(tok string) (uuid.UUID, error) {
	return m.parse(tok, KindAccess, m.accessSecret)
}

// ParseRefresh проверяет токен обновления и возвращает идентификатор пользователя.
func (m *Manager) ParseRefresh(tok string) (uuid.UUID, error) {
	return m.parse(tok, KindRefresh, m.refreshSecret)
}

func (m *Manager) parse(tok string, kind Kind, secret []byte) (uuid.UUID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperror.ErrTokenExpired.Wrap(err)
		}
		return uuid.Nil, apperror.ErrTokenInvalid.Wrap(err)
	}

	if claims.Type != kind {
		return uuid.Nil, apperror.ErrTokenInvalid.Withf("expected %s token", kind)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperror.ErrTokenInvalid.Wrap(err)
	}
	return id, nil
}
