package authz

import (
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/printflow/internal/apperror"
)

// PrintingFields перечисляет поля производственного листа, которые может менять роль PRINTING.
var PrintingFields = []string{"stage", "machine"}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ChangedFields возвращает отсортированные имена полей incoming, значения которых
// отличаются от stored. Даты сравниваются как моменты времени, числа по значению.
func ChangedFields(stored, incoming map[string]any) []string {
	var changed []string
	for field, v := range incoming {
		if !sameValue(stored[field], v) {
			changed = append(changed, field)
		}
	}
	sort.Strings(changed)
	return changed
}

// Restrict оставляет в incoming только реально изменённые поля и отклоняет
// изменения полей вне allowed ошибкой ErrFieldNotAllowed с перечнем полей.
func Restrict(allowed []string, stored, incoming map[string]any) (map[string]any, error) {
	changed := ChangedFields(stored, incoming)

	var denied []string
	for _, f := range changed {
		if !slices.Contains(allowed, f) {
			denied = append(denied, f)
		}
	}
	if len(denied) > 0 {
		fields := make([]apperror.FieldError, 0, len(denied))
		for _, f := range denied {
			fields = append(fields, apperror.FieldError{Field: f, Message: "field cannot be changed by this role"})
		}
		return nil, apperror.ErrFieldNotAllowed.
			Withf("changing fields %s is not allowed", strings.Join(denied, ", ")).
			WithFields(fields)
	}

	narrowed := make(map[string]any, len(changed))
	for _, f := range changed {
		narrowed[f] = incoming[f]
	}
	return narrowed, nil
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if ta, ok := AsTime(a); ok {
		if tb, ok := AsTime(b); ok {
			return ta.Equal(tb)
		}
	}

	if da, ok := asDecimal(a); ok {
		if db, ok := asDecimal(b); ok {
			return da.Equal(db)
		}
	}

	return reflect.DeepEqual(a, b)
}

// AsTime распознаёт момент времени: time.Time или строку в одном из форматов
// RFC 3339, дата и время без зоны, только дата.
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case decimal.Decimal:
		return n, true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
