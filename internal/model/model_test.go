package model

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionTypeJSON(t *testing.T) {
	t.Run("rotary", func(t *testing.T) {
		var p ProductionType
		require.NoError(t, json.Unmarshal([]byte(`{"type":"rotary","meters":1200.5}`), &p))

		assert.Equal(t, ProductionRotary, p.Kind)
		require.NotNil(t, p.Rotary)
		assert.Equal(t, 1200.5, p.Rotary.Meters)
		assert.Nil(t, p.Localized)
		assert.True(t, p.PayloadMatchesKind())

		out, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"rotary","meters":1200.5}`, string(out))
	})

	t.Run("localized", func(t *testing.T) {
		var p ProductionType
		require.NoError(t, json.Unmarshal([]byte(`{"type":"localized","sizes":[{"size":"M","variant":"navy","quantity":40}]}`), &p))

		assert.Equal(t, ProductionLocalized, p.Kind)
		require.NotNil(t, p.Localized)
		assert.Equal(t, []SizeQuantity{{Size: "M", Variant: "navy", Quantity: 40}}, p.Localized.Sizes)
		assert.True(t, p.PayloadMatchesKind())
	})

	t.Run("mixed payload", func(t *testing.T) {
		var p ProductionType
		require.NoError(t, json.Unmarshal([]byte(`{"type":"rotary","meters":10,"sizes":[{"size":"M","quantity":1}]}`), &p))
		assert.False(t, p.PayloadMatchesKind())
	})

	t.Run("payload of the other variant", func(t *testing.T) {
		var p ProductionType
		require.NoError(t, json.Unmarshal([]byte(`{"type":"localized","meters":10}`), &p))
		assert.False(t, p.PayloadMatchesKind())
	})

	t.Run("unknown kind cannot be encoded", func(t *testing.T) {
		_, err := json.Marshal(ProductionType{Kind: "screen"})
		assert.Error(t, err)
	})
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, Limit: 500}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxLimit, q.Limit)
	assert.Equal(t, ActiveOnly, q.Active)
	assert.Equal(t, SortDesc, q.Order)

	q = ListQuery{Page: 3, Limit: 20, Active: ActiveAll, Order: SortAsc}.Normalize()
	assert.Equal(t, 40, q.Offset())
	assert.Equal(t, ActiveAll, q.Active)
	assert.Equal(t, SortAsc, q.Order)

	q = ListQuery{Page: 1 << 60, Limit: MaxLimit}.Normalize()
	assert.Equal(t, MaxPage, q.Page)
	assert.Positive(t, q.Offset())
}

func TestPages(t *testing.T) {
	assert.Equal(t, 0, Pages(0, 10))
	assert.Equal(t, 1, Pages(10, 10))
	assert.Equal(t, 2, Pages(11, 10))
}

func TestUserIsLocked(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.False(t, (&User{}).IsLocked(now))
	assert.True(t, (&User{LockUntil: &future}).IsLocked(now))
	assert.False(t, (&User{LockUntil: &past}).IsLocked(now))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RolePrinting.Valid())
	assert.False(t, Role("moderator").Valid())
}
