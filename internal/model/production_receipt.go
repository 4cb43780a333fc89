package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus описывает статус оплаты квитанции.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// PaymentMethod описывает способ оплаты.
type PaymentMethod string

const (
	PaymentPix        PaymentMethod = "PIX"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentBankSlip   PaymentMethod = "BANK_SLIP"
	PaymentCash       PaymentMethod = "CASH"
	PaymentTransfer   PaymentMethod = "TRANSFER"
)

// ProductionReceipt описывает расчёт по завершённому производственному заказу.
type ProductionReceipt struct {
	ID                uuid.UUID       `json:"id"`
	ProductionOrderID uuid.UUID       `json:"productionOrderId"`
	Reference         string          `json:"reference"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	RemainingAmount   decimal.Decimal `json:"remainingAmount"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	DueDate           time.Time       `json:"dueDate"`
	PaymentDate       *time.Time      `json:"paymentDate,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ReceiptTotals содержит суммы по активным квитанциям.
type ReceiptTotals struct {
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}
