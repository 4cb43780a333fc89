package repository

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

type filterKind int

const (
	filterText filterKind = iota
	filterUpper
	filterUUID
	filterBool
	filterInt
)

type filter struct {
	column string
	kind   filterKind
}

// listSpec описывает таблицу сущности для построения запросов списка.
// Условия search содержат %[1]s на месте параметра шаблона поиска.
type listSpec struct {
	table   string
	columns string
	search  []string
	filters map[string]filter
	sorts   map[string]string
}

type listQuery struct {
	where   string
	orderBy string
	args    []any
}

// buildList собирает WHERE, ORDER BY и параметры по ListQuery.
// Неизвестные фильтры игнорируются, неизвестное поле сортировки заменяется на created_at.
func buildList(spec listSpec, q model.ListQuery) (listQuery, error) {
	q = q.Normalize()

	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	switch q.Active {
	case model.ActiveOnly:
		conds = append(conds, "active = true")
	case model.InactiveOnly:
		conds = append(conds, "active = false")
	case model.ActiveAll:
	default:
		return listQuery{}, apperror.ErrInvalidQuery.Withf("active must be true, false or all")
	}

	if s := strings.TrimSpace(q.Search); s != "" && len(spec.search) > 0 {
		ph := next("%" + escapeLike(s) + "%")
		parts := make([]string, 0, len(spec.search))
		for _, expr := range spec.search {
			parts = append(parts, fmt.Sprintf(expr, ph))
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		f, ok := spec.filters[key]
		if !ok {
			continue
		}
		v, err := filterValue(key, f.kind, q.Filters[key])
		if err != nil {
			return listQuery{}, err
		}
		conds = append(conds, f.column+" = "+next(v))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	column, ok := spec.sorts[q.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if q.Order == model.SortAsc {
		dir = "ASC"
	}

	return listQuery{
		where:   where,
		orderBy: fmt.Sprintf(" ORDER BY %s %s, id %s", column, dir, dir),
		args:    args,
	}, nil
}

func (l listQuery) countSQL(spec listSpec) string {
	return "SELECT count(*) FROM " + spec.table + l.where
}

func (l listQuery) selectSQL(spec listSpec, q model.ListQuery) (string, []any) {
	q = q.Normalize()
	n := len(l.args)
	sql := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		spec.columns, spec.table, l.where, l.orderBy, n+1, n+2)
	args := append(append([]any{}, l.args...), q.Limit, q.Offset())
	return sql, args
}

func filterValue(key string, kind filterKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case filterUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.ErrInvalidQuery.Withf("%s must be a valid id", key)
		}
		return id, nil
	case filterBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperror.ErrInvalidQuery.Withf("%s must be true or false", key)
		}
		return b, nil
	case filterInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperror.ErrInvalidQuery.Withf("%s must be a number", key)
		}
		return n, nil
	case filterUpper:
		return strings.ToUpper(raw), nil
	default:
		return raw, nil
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
