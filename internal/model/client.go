package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client описывает компанию-заказчика.
type Client struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"companyName"`
	Acronym     string    `json:"acronym"`
	TaxID       string    `json:"taxId"`
	Contact     Contact   `json:"contact"`
	Address     Address   `json:"address"`
	// Цена за метр ротативной печати и за штуку локализованной.
	RotaryPrice    decimal.Decimal `json:"rotaryPrice"`
	LocalizedPrice decimal.Decimal `json:"localizedPrice"`
	Notes          string          `json:"notes,omitempty"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
