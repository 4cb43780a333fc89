// Package model содержит доменные сущности сервиса printflow.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role описывает роль пользователя в системе.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDefault   Role = "DEFAULT"
	RolePrinting  Role = "PRINTING"
	RoleFinancing Role = "FINANCING"
)

// Roles перечисляет все допустимые роли.
var Roles = []Role{RoleAdmin, RoleDefault, RolePrinting, RoleFinancing}

// Valid сообщает, входит ли роль в закрытый набор ролей.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// User представляет учётную запись сотрудника.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  []byte     `json:"-"`
	Role          Role       `json:"role"`
	Active        bool       `json:"active"`
	LoginAttempts int        `json:"loginAttempts"`
	LockUntil     *time.Time `json:"lockUntil,omitempty"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsLocked сообщает, заблокирована ли учётная запись на момент now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// Contact содержит контактные данные клиента.
type Contact struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

// Address описывает адрес клиента или доставки.
type Address struct {
	Street       string `json:"street" validate:"required,max=200"`
	Number       string `json:"number" validate:"required,max=20"`
	Complement   string `json:"complement,omitempty" validate:"max=120"`
	Neighborhood string `json:"neighborhood" validate:"required,max=120"`
	City         string `json:"city" validate:"required,max=120"`
	State        string `json:"state" validate:"required,len=2,alpha"`
	ZipCode      string `json:"zipCode" validate:"required,max=10"`
}

// Entity перечисляет хранимые типы записей.
type Entity string

const (
	EntityUser              Entity = "users"
	EntityClient            Entity = "clients"
	EntityDevelopment       Entity = "developments"
	EntityProductionOrder   Entity = "production-orders"
	EntityProductionSheet   Entity = "production-sheets"
	EntityDeliverySheet     Entity = "delivery-sheets"
	EntityProductionReceipt Entity = "production-receipts"
)

// Entities перечисляет все ресурсы API в порядке их следования в жизненном цикле.
var Entities = []Entity{
	EntityUser,
	EntityClient,
	EntityDevelopment,
	EntityProductionOrder,
	EntityProductionSheet,
	EntityDeliverySheet,
	EntityProductionReceipt,
}
