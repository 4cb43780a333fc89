package model

import "math"

// ActiveFilter задаёт отбор по признаку мягкого удаления.
type ActiveFilter string

const (
	ActiveOnly   ActiveFilter = "true"
	InactiveOnly ActiveFilter = "false"
	ActiveAll    ActiveFilter = "all"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage держит смещение страницы в пределах int32 при любом размере страницы.
	MaxPage = math.MaxInt32 / MaxLimit
)

// SortOrder задаёт направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery описывает фильтрацию, сортировку и пагинацию списка.
// Filters содержит точные совпадения по именам полей API.
type ListQuery struct {
	Search  string
	Active  ActiveFilter
	Filters map[string]string
	SortBy  string
	Order   SortOrder
	Page    int
	Limit   int
}

// Normalize подставляет значения по умолчанию и ограничивает размер страницы.
func (q ListQuery) Normalize() ListQuery {
	if q.Active == "" {
		q.Active = ActiveOnly
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Order != SortAsc {
		q.Order = SortDesc
	}
	return q
}

// Offset возвращает смещение первой записи страницы.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Page содержит страницу результатов и общее количество записей.
type Page[T any] struct {
	Items []T
	Total int
}

// Pages возвращает количество страниц для заданного размера.
func Pages(total, limit int) int {
	if limit < 1 || total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
