package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer()
	require.NoError(t, err)
	return e
}

func TestEnforcerAllow(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		role     model.Role
		resource model.Entity
		action   Action
		want     bool
	}{
		{model.RoleAdmin, model.EntityUser, ActionDelete, true},
		{model.RoleAdmin, model.EntityProductionReceipt, ActionStatus, true},
		{model.RoleDefault, model.EntityClient, ActionCreate, true},
		{model.RoleDefault, model.EntityProductionSheet, ActionUpdate, true},
		{model.RoleDefault, model.EntityProductionReceipt, ActionRead, true},
		{model.RoleDefault, model.EntityProductionReceipt, ActionCreate, false},
		{model.RoleDefault, model.EntityUser, ActionRead, false},
		{model.RolePrinting, model.EntityProductionSheet, ActionRead, true},
		{model.RolePrinting, model.EntityProductionSheet, ActionUpdate, true},
		{model.RolePrinting, model.EntityProductionSheet, ActionCreate, false},
		{model.RolePrinting, model.EntityProductionSheet, ActionDelete, false},
		{model.RolePrinting, model.EntityClient, ActionRead, false},
		{model.RoleFinancing, model.EntityProductionReceipt, ActionCreate, true},
		{model.RoleFinancing, model.EntityClient, ActionRead, true},
		{model.RoleFinancing, model.EntityClient, ActionUpdate, false},
		{model.RoleFinancing, model.EntityDevelopment, ActionRead, false},
		{"GUEST", model.EntityClient, ActionRead, false},
	}

	for _, tt := range tests {
		name := string(tt.role) + " " + string(tt.action) + " " + string(tt.resource)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Allow(tt.role, tt.resource, tt.action))
		})
	}
}

// Производный список разделов должен совпадать с проверкой прав по каждому ресурсу.
func TestResourcesConsistentWithAllow(t *testing.T) {
	e := newTestEnforcer(t)

	for _, role := range model.Roles {
		resources := e.Resources(role)
		for _, entity := range model.Entities {
			anyAction := false
			for _, a := range Actions {
				if e.Allow(role, entity, a) {
					anyAction = true
				}
			}
			assert.Equal(t, anyAction, contains(resources, entity), "role %s resource %s", role, entity)
		}
	}

	assert.Equal(t, []model.Entity{model.EntityProductionSheet}, e.Resources(model.RolePrinting))
	assert.Len(t, e.Resources(model.RoleAdmin), len(model.Entities))
}

func TestPermissions(t *testing.T) {
	e := newTestEnforcer(t)

	perms := e.Permissions(model.RolePrinting)
	assert.Equal(t, map[model.Entity][]Action{
		model.EntityProductionSheet: {ActionRead, ActionUpdate, ActionStatus},
	}, perms)
}

func contains(list []model.Entity, v model.Entity) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func TestChangedFields(t *testing.T) {
	stored := map[string]any{
		"stage":            "PRINTING",
		"machine":          float64(2),
		"entryDate":        "2025-03-10T00:00:00Z",
		"expectedExitDate": "2025-03-12T09:00:00-03:00",
		"temperature":      "180.5",
		"productionNotes":  "",
	}

	tests := []struct {
		name     string
		incoming map[string]any
		want     []string
	}{
		{
			name:     "same date in another format",
			incoming: map[string]any{"entryDate": "2025-03-10", "expectedExitDate": "2025-03-12T12:00:00Z"},
		},
		{
			name:     "number against decimal string",
			incoming: map[string]any{"temperature": 180.50, "machine": 2},
		},
		{
			name:     "changed values",
			incoming: map[string]any{"stage": "CALENDERING", "temperature": 99.0, "machine": float64(2)},
			want:     []string{"stage", "temperature"},
		},
		{
			name:     "null against value",
			incoming: map[string]any{"temperature": nil},
			want:     []string{"temperature"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangedFields(stored, tt.incoming))
		})
	}
}

func TestRestrict(t *testing.T) {
	stored := map[string]any{
		"stage":       "PRINTING",
		"machine":     float64(1),
		"entryDate":   "2025-03-10T00:00:00Z",
		"temperature": nil,
	}

	t.Run("rejects fields outside the allowed set", func(t *testing.T) {
		_, err := Restrict(PrintingFields, stored, map[string]any{"stage": "CALENDERING", "temperature": 99.0})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrFieldNotAllowed)

		var appErr *apperror.Error
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Message, "temperature")
		require.Len(t, appErr.Fields, 1)
		assert.Equal(t, "temperature", appErr.Fields[0].Field)
	})

	t.Run("narrows to changed allowed fields", func(t *testing.T) {
		got, err := Restrict(PrintingFields, stored, map[string]any{
			"stage":     "CALENDERING",
			"machine":   float64(1),
			"entryDate": "2025-03-10",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"stage": "CALENDERING"}, got)
	})
}
