package model

import (
	"time"

	"github.com/google/uuid"
)

// DevelopmentStatus описывает статус согласования разработки.
type DevelopmentStatus string

const (
	DevelopmentCreated          DevelopmentStatus = "CREATED"
	DevelopmentAwaitingApproval DevelopmentStatus = "AWAITING_APPROVAL"
	DevelopmentApproved         DevelopmentStatus = "APPROVED"
	DevelopmentCanceled         DevelopmentStatus = "CANCELED"
)

// Development описывает предлагаемое клиенту изделие.
type Development struct {
	ID              uuid.UUID         `json:"id"`
	ClientID        uuid.UUID         `json:"clientId"`
	Reference       string            `json:"reference"`
	Description     string            `json:"description"`
	ClientReference string            `json:"clientReference,omitempty"`
	PieceImageURL   string            `json:"pieceImageUrl,omitempty"`
	Variants        []string          `json:"variants"`
	Status          DevelopmentStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	Active          bool              `json:"active"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
