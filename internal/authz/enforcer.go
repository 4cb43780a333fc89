// Package authz отвечает за разграничение доступа: матрица «роль → ресурс → действие»
// на casbin и ограничение изменяемых полей для роли PRINTING.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"

	"github.com/mmeshcher/printflow/internal/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Action обозначает действие над ресурсом API.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionStatus Action = "status"
	ActionDelete Action = "delete"
)

// Actions перечисляет все действия.
var Actions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionStatus, ActionDelete}

// Enforcer проверяет права ролей по встроенной политике.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer загружает встроенные модель и политику.
func NewEnforcer() (*Enforcer, error) {
	m, err := casbinmodel.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if err := loadPolicy(e, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: e}, nil
}

func loadPolicy(e *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) != 4 || parts[0] != "p" {
			return fmt.Errorf("malformed policy line %q", line)
		}

		if _, err := e.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
			return fmt.Errorf("add policy %v: %w", parts[1:], err)
		}
	}
	return nil
}

// Allow сообщает, разрешено ли роли выполнить действие над ресурсом.
// Ошибка вычисления политики трактуется как запрет.
func (e *Enforcer) Allow(role model.Role, resource model.Entity, action Action) bool {
	ok, err := e.enforcer.Enforce(string(role), string(resource), string(action))
	return err == nil && ok
}

// Resources возвращает ресурсы, к которым у роли есть хотя бы одно действие.
func (e *Enforcer) Resources(role model.Role) []model.Entity {
	var res []model.Entity
	for _, entity := range model.Entities {
		for _, action := range Actions {
			if e.Allow(role, entity, action) {
				res = append(res, entity)
				break
			}
		}
	}
	return res
}

// Permissions возвращает разрешённые роли действия по каждому ресурсу.
func (e *Enforcer) Permissions(role model.Role) map[model.Entity][]Action {
	perms := make(map[model.Entity][]Action)
	for _, entity := range model.Entities {
		for _, action := range Actions {
			if e.Allow(role, entity, action) {
				perms[entity] = append(perms[entity], action)
			}
		}
	}
	return perms
}
