package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterInput содержит данные самостоятельной регистрации.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput содержит учётные данные для входа.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput содержит токен обновления.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ChangePasswordInput описывает смену собственного пароля.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

// UserCreateInput используется администратором для создания пользователя.
type UserCreateInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     Role   `json:"role" validate:"required,role"`
}

// UserUpdateInput используется администратором для изменения пользователя.
type UserUpdateInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email,max=254"`
	Role  Role   `json:"role" validate:"required,role"`
}

// ClientInput содержит данные клиента для создания и изменения.
type ClientInput struct {
	CompanyName    string          `json:"companyName" validate:"required,max=200"`
	Acronym        string          `json:"acronym" validate:"required,acronym"`
	TaxID          string          `json:"taxId" validate:"required,cnpj"`
	Contact        Contact         `json:"contact"`
	Address        Address         `json:"address"`
	RotaryPrice    decimal.Decimal `json:"rotaryPrice" validate:"gte=0"`
	LocalizedPrice decimal.Decimal `json:"localizedPrice" validate:"gte=0"`
	Notes          string          `json:"notes" validate:"max=1000"`
}

// DevelopmentInput содержит данные разработки. Клиент задаётся при создании и не меняется.
type DevelopmentInput struct {
	ClientID        uuid.UUID `json:"clientId" validate:"required"`
	Description     string    `json:"description" validate:"required,max=500"`
	ClientReference string    `json:"clientReference" validate:"max=100"`
	PieceImageURL   string    `json:"pieceImageUrl" validate:"omitempty,url,max=500"`
	Variants        []string  `json:"variants" validate:"max=50,dive,required,max=60"`
	Notes           string    `json:"notes" validate:"max=1000"`
}

// ProductionOrderInput содержит данные производственного заказа.
type ProductionOrderInput struct {
	DevelopmentID  uuid.UUID           `json:"developmentId" validate:"required"`
	ProductionType ProductionType      `json:"productionType"`
	FabricType     string              `json:"fabricType" validate:"required,max=120"`
	FabricWidth    decimal.NullDecimal `json:"fabricWidth" validate:"nullgt=0"`
	HasCraft       bool                `json:"hasCraft"`
	Observations   string              `json:"observations" validate:"max=1000"`
}

// ProductionSheetInput содержит данные нового производственного листа.
type ProductionSheetInput struct {
	ProductionOrderID uuid.UUID           `json:"productionOrderId" validate:"required"`
	EntryDate         time.Time           `json:"entryDate" validate:"required"`
	ExpectedExitDate  time.Time           `json:"expectedExitDate" validate:"required,gtefield=EntryDate"`
	Machine           int                 `json:"machine" validate:"required,min=1,max=4"`
	Temperature       decimal.NullDecimal `json:"temperature" validate:"nullgte=0"`
	Velocity          decimal.NullDecimal `json:"velocity" validate:"nullgte=0"`
	ProductionNotes   string              `json:"productionNotes" validate:"max=1000"`
}

// ProductionSheetUpdate содержит изменяемые поля листа после слияния с сохранённой записью.
type ProductionSheetUpdate struct {
	EntryDate        time.Time           `json:"entryDate" validate:"required"`
	ExpectedExitDate time.Time           `json:"expectedExitDate" validate:"required,gtefield=EntryDate"`
	Machine          int                 `json:"machine" validate:"required,min=1,max=4"`
	Stage            Stage               `json:"stage" validate:"required,oneof=PRINTING CALENDERING FINISHED"`
	Temperature      decimal.NullDecimal `json:"temperature" validate:"nullgte=0"`
	Velocity         decimal.NullDecimal `json:"velocity" validate:"nullgte=0"`
	ProductionNotes  string              `json:"productionNotes" validate:"max=1000"`
}

// DeliverySheetInput содержит данные доставки.
type DeliverySheetInput struct {
	ProductionSheetID uuid.UUID       `json:"productionSheetId" validate:"required"`
	TotalValue        decimal.Decimal `json:"totalValue" validate:"gte=0"`
	Address           Address         `json:"address"`
	DeliveryDate      *time.Time      `json:"deliveryDate"`
	Notes             string          `json:"notes" validate:"max=1000"`
}

// ProductionReceiptInput содержит данные квитанции. Статус оплаты вычисляется по суммам.
type ProductionReceiptInput struct {
	ProductionOrderID uuid.UUID       `json:"productionOrderId" validate:"required"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod" validate:"required,oneof=PIX CREDIT_CARD DEBIT_CARD BANK_SLIP CASH TRANSFER"`
	TotalAmount       decimal.Decimal `json:"totalAmount" validate:"gte=0"`
	PaidAmount        decimal.Decimal `json:"paidAmount" validate:"gte=0"`
	DueDate           time.Time       `json:"dueDate" validate:"required"`
	PaymentDate       *time.Time      `json:"paymentDate"`
	Notes             string          `json:"notes" validate:"max=1000"`
}

// PaymentInput описывает очередной платёж по квитанции.
type PaymentInput struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentDate *time.Time      `json:"paymentDate"`
}

// StatusInput задаёт новый статус записи.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// StageInput явно задаёт следующий этап листа.
type StageInput struct {
	Stage Stage `json:"stage" validate:"required,oneof=PRINTING CALENDERING FINISHED"`
}

// Stats содержит сводку по сущности: количество активных и неактивных записей
// и группировки активных записей по полям.
type Stats struct {
	Active   int                       `json:"active"`
	Inactive int                       `json:"inactive"`
	Groups   map[string]map[string]int `json:"groups,omitempty"`
	Amounts  *ReceiptTotals            `json:"amounts,omitempty"`
}
