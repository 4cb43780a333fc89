package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionOrderStatus описывает этап выполнения производственного заказа.
type ProductionOrderStatus string

const (
	OrderCreated           ProductionOrderStatus = "CREATED"
	OrderPilotProduction   ProductionOrderStatus = "PILOT_PRODUCTION"
	OrderPilotSent         ProductionOrderStatus = "PILOT_SENT"
	OrderPilotApproved     ProductionOrderStatus = "PILOT_APPROVED"
	OrderProductionStarted ProductionOrderStatus = "PRODUCTION_STARTED"
	OrderFinalized         ProductionOrderStatus = "FINALIZED"
)

// ProductionKind различает варианты производства.
type ProductionKind string

const (
	ProductionRotary    ProductionKind = "rotary"
	ProductionLocalized ProductionKind = "localized"
)

// RotarySpec описывает непрерывную печать, объём задаётся в метрах.
type RotarySpec struct {
	Meters float64 `json:"meters" validate:"gt=0"`
}

// SizeQuantity задаёт количество изделий одного размера и варианта.
type SizeQuantity struct {
	Size     string `json:"size" validate:"required,max=20"`
	Variant  string `json:"variant,omitempty" validate:"max=60"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// LocalizedSpec описывает локализованную печать по размерам.
type LocalizedSpec struct {
	Sizes []SizeQuantity `json:"sizes" validate:"required,min=1,dive"`
}

// ProductionType хранит ровно один из вариантов производства.
// Ровно одно из полей Rotary и Localized заполнено, в соответствии с Kind.
type ProductionType struct {
	Kind      ProductionKind `json:"type" validate:"required,oneof=rotary localized"`
	Rotary    *RotarySpec    `json:"rotary"`
	Localized *LocalizedSpec `json:"localized"`
}

// Rotary создаёт тип производства с метражом.
func Rotary(meters float64) ProductionType {
	return ProductionType{Kind: ProductionRotary, Rotary: &RotarySpec{Meters: meters}}
}

// Localized создаёт тип производства с разбивкой по размерам.
func Localized(sizes ...SizeQuantity) ProductionType {
	return ProductionType{Kind: ProductionLocalized, Localized: &LocalizedSpec{Sizes: sizes}}
}

type productionTypeWire struct {
	Type   ProductionKind `json:"type"`
	Meters *float64       `json:"meters,omitempty"`
	Sizes  []SizeQuantity `json:"sizes,omitempty"`
}

// MarshalJSON кодирует вариант вместе с дискриминатором type.
func (p ProductionType) MarshalJSON() ([]byte, error) {
	w := productionTypeWire{Type: p.Kind}
	switch p.Kind {
	case "":
		return []byte("null"), nil
	case ProductionRotary:
		if p.Rotary == nil {
			return nil, fmt.Errorf("rotary production type without payload")
		}
		w.Meters = &p.Rotary.Meters
	case ProductionLocalized:
		if p.Localized == nil {
			return nil, fmt.Errorf("localized production type without payload")
		}
		w.Sizes = p.Localized.Sizes
	default:
		return nil, fmt.Errorf("unknown production type %q", p.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON раскладывает входные поля по вариантам. Согласованность
// дискриминатора и полезной нагрузки проверяется при валидации.
func (p *ProductionType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ProductionType{}
		return nil
	}

	var w productionTypeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = ProductionType{Kind: w.Type}
	if w.Meters != nil {
		p.Rotary = &RotarySpec{Meters: *w.Meters}
	}
	if w.Sizes != nil {
		p.Localized = &LocalizedSpec{Sizes: w.Sizes}
	}
	return nil
}

// PayloadMatchesKind сообщает, что заполнен ровно тот вариант, на который указывает Kind.
func (p ProductionType) PayloadMatchesKind() bool {
	switch p.Kind {
	case ProductionRotary:
		return p.Rotary != nil && p.Localized == nil
	case ProductionLocalized:
		return p.Localized != nil && p.Rotary == nil
	default:
		return false
	}
}

// ProductionOrder описывает производственный заказ по утверждённой разработке.
type ProductionOrder struct {
	ID             uuid.UUID             `json:"id"`
	DevelopmentID  uuid.UUID             `json:"developmentId"`
	Reference      string                `json:"reference"`
	Status         ProductionOrderStatus `json:"status"`
	ProductionType ProductionType        `json:"productionType"`
	FabricType     string                `json:"fabricType"`
	FabricWidth    decimal.NullDecimal   `json:"fabricWidth"`
	HasCraft       bool                  `json:"hasCraft"`
	Observations   string                `json:"observations,omitempty"`
	Active         bool                  `json:"active"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}
