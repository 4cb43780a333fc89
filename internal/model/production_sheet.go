package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stage описывает этап прохождения ткани через машину.
type Stage string

const (
	StagePrinting    Stage = "PRINTING"
	StageCalendering Stage = "CALENDERING"
	StageFinished    Stage = "FINISHED"
)

// Machines перечисляет номера печатных машин цеха.
var Machines = []int{1, 2, 3, 4}

// ProductionSheet описывает один прогон производственного заказа на машине.
type ProductionSheet struct {
	ID                uuid.UUID           `json:"id"`
	ProductionOrderID uuid.UUID           `json:"productionOrderId"`
	Reference         string              `json:"reference"`
	EntryDate         time.Time           `json:"entryDate"`
	ExpectedExitDate  time.Time           `json:"expectedExitDate"`
	Machine           int                 `json:"machine"`
	Stage             Stage               `json:"stage"`
	Temperature       decimal.NullDecimal `json:"temperature"`
	Velocity          decimal.NullDecimal `json:"velocity"`
	ProductionNotes   string              `json:"productionNotes,omitempty"`
	Active            bool                `json:"active"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}
