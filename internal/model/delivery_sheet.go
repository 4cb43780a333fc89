package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryStatus описывает статус доставки.
type DeliveryStatus string

const (
	DeliveryCreated   DeliveryStatus = "CREATED"
	DeliveryOnRoute   DeliveryStatus = "ON_ROUTE"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
)

// DeliverySheet описывает доставку результата одного производственного листа.
type DeliverySheet struct {
	ID                uuid.UUID       `json:"id"`
	ProductionSheetID uuid.UUID       `json:"productionSheetId"`
	Reference         string          `json:"reference"`
	TotalValue        decimal.Decimal `json:"totalValue"`
	Address           Address         `json:"address"`
	Status            DeliveryStatus  `json:"status"`
	DeliveryDate      *time.Time      `json:"deliveryDate,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
