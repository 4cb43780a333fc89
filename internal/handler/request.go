package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

// reservedParams обрабатываются отдельно и не попадают в фильтры.
var reservedParams = map[string]struct{}{
	"page":   {},
	"limit":  {},
	"sortBy": {},
	"order":  {},
	"search": {},
	"active": {},
}

// decodeJSON читает тело запроса с ограничением размера и запретом неизвестных полей.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.ErrInvalidBody.Wrap(err)
		}
		if errors.Is(err, io.EOF) {
			return apperror.ErrInvalidBody.Withf("request body is empty")
		}
		return apperror.ErrInvalidBody.Withf("invalid request body: %v", err)
	}
	return nil
}

// pathID разбирает идентификатор из пути запроса.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil || len(raw) != 36 {
		return uuid.Nil, apperror.ErrInvalidID.Withf("invalid id format: %q", raw)
	}
	return id, nil
}

// parseListQuery собирает параметры списка. Все параметры, кроме служебных,
// считаются фильтрами по точному совпадению.
func parseListQuery(r *http.Request) (model.ListQuery, error) {
	values := r.URL.Query()
	q := model.ListQuery{
		Search:  strings.TrimSpace(values.Get("search")),
		SortBy:  values.Get("sortBy"),
		Filters: make(map[string]string),
	}

	var err error
	if q.Page, err = positiveInt(values.Get("page"), "page"); err != nil {
		return q, err
	}
	if q.Page > model.MaxPage {
		return q, apperror.ErrInvalidQuery.Withf("page must not exceed %d", model.MaxPage)
	}
	if q.Limit, err = positiveInt(values.Get("limit"), "limit"); err != nil {
		return q, err
	}

	switch order := strings.ToLower(values.Get("order")); order {
	case "":
	case string(model.SortAsc), string(model.SortDesc):
		q.Order = model.SortOrder(order)
	default:
		return q, apperror.ErrInvalidQuery.Withf("order must be asc or desc")
	}

	switch active := strings.ToLower(values.Get("active")); active {
	case "":
	case string(model.ActiveOnly), string(model.InactiveOnly), string(model.ActiveAll):
		q.Active = model.ActiveFilter(active)
	default:
		return q, apperror.ErrInvalidQuery.Withf("active must be true, false or all")
	}

	for key, vals := range values {
		if _, ok := reservedParams[key]; ok || len(vals) == 0 || vals[0] == "" {
			continue
		}
		q.Filters[key] = vals[0]
	}
	return q, nil
}

func positiveInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.ErrInvalidQuery.Withf("%s must be a positive integer", name)
	}
	return n, nil
}
