package service

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

// memRepo хранит записи в памяти. WithinTx откатывает все изменения, если fn вернула ошибку.
type memRepo struct {
	users        map[uuid.UUID]model.User
	clients      map[uuid.UUID]model.Client
	developments map[uuid.UUID]model.Development
	orders       map[uuid.UUID]model.ProductionOrder
	sheets       map[uuid.UUID]model.ProductionSheet
	deliveries   map[uuid.UUID]model.DeliverySheet
	receipts     map[uuid.UUID]model.ProductionReceipt

	// failOn возвращает заданную ошибку из метода с этим именем.
	failOn map[string]error
	// referenceConflicts: сколько следующих вставок разработки завершится конфликтом кода.
	referenceConflicts int

	inTx bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:        map[uuid.UUID]model.User{},
		clients:      map[uuid.UUID]model.Client{},
		developments: map[uuid.UUID]model.Development{},
		orders:       map[uuid.UUID]model.ProductionOrder{},
		sheets:       map[uuid.UUID]model.ProductionSheet{},
		deliveries:   map[uuid.UUID]model.DeliverySheet{},
		receipts:     map[uuid.UUID]model.ProductionReceipt{},
		failOn:       map[string]error{},
	}
}

func (m *memRepo) fail(method string) error {
	return m.failOn[method]
}

func (m *memRepo) Close() error { return nil }
func (m *memRepo) Ping(ctx context.Context) error { return m.fail("Ping") }

func (m *memRepo) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.inTx {
		return fn(ctx)
	}

	snapshot := *m
	snapshot.users = maps.Clone(m.users)
	snapshot.clients = maps.Clone(m.clients)
	snapshot.developments = maps.Clone(m.developments)
	snapshot.orders = maps.Clone(m.orders)
	snapshot.sheets = maps.Clone(m.sheets)
	snapshot.deliveries = maps.Clone(m.deliveries)
	snapshot.receipts = maps.Clone(m.receipts)

	m.inTx = true
	err := fn(ctx)
	m.inTx = false
	if err != nil {
		m.users = snapshot.users
		m.clients = snapshot.clients
		m.developments = snapshot.developments
		m.orders = snapshot.orders
		m.sheets = snapshot.sheets
		m.deliveries = snapshot.deliveries
		m.receipts = snapshot.receipts
	}
	return err
}

func (m *memRepo) SetActive(ctx context.Context, entity model.Entity, id uuid.UUID, active bool, at time.Time) error {
	switch entity {
	case model.EntityUser:
		return modify(m.users, id, apperror.ErrUserRecordNotFound, func(v *model.User) { v.Active, v.UpdatedAt = active, at })
	case model.EntityClient:
		if c, ok := m.clients[id]; ok && active {
			for _, other := range m.clients {
				if other.ID != id && other.Active && other.TaxID == c.TaxID {
					return apperror.ErrTaxIDExists
				}
			}
		}
		return modify(m.clients, id, apperror.ErrClientNotFound, func(v *model.Client) { v.Active, v.UpdatedAt = active, at })
	case model.EntityDevelopment:
		return modify(m.developments, id, apperror.ErrDevelopmentNotFound, func(v *model.Development) { v.Active, v.UpdatedAt = active, at })
	case model.EntityProductionOrder:
		return modify(m.orders, id, apperror.ErrProductionOrderNotFound, func(v *model.ProductionOrder) { v.Active, v.UpdatedAt = active, at })
	case model.EntityProductionSheet:
		return modify(m.sheets, id, apperror.ErrProductionSheetNotFound, func(v *model.ProductionSheet) { v.Active, v.UpdatedAt = active, at })
	case model.EntityDeliverySheet:
		return modify(m.deliveries, id, apperror.ErrDeliverySheetNotFound, func(v *model.DeliverySheet) { v.Active, v.UpdatedAt = active, at })
	case model.EntityProductionReceipt:
		return modify(m.receipts, id, apperror.ErrProductionReceiptNotFound, func(v *model.ProductionReceipt) { v.Active, v.UpdatedAt = active, at })
	}
	return apperror.ErrNotFound
}

func modify[T any](store map[uuid.UUID]T, id uuid.UUID, notFound error, set func(*T)) error {
	v, ok := store[id]
	if !ok {
		return notFound
	}
	set(&v)
	store[id] = v
	return nil
}

func (m *memRepo) HasActiveChild(ctx context.Context, entity model.Entity, parentID, exclude uuid.UUID) (bool, error) {
	switch entity {
	case model.EntityProductionOrder:
		for _, o := range m.orders {
			if o.DevelopmentID == parentID && o.Active && o.ID != exclude {
				return true, nil
			}
		}
	case model.EntityDeliverySheet:
		for _, d := range m.deliveries {
			if d.ProductionSheetID == parentID && d.Active && d.ID != exclude {
				return true, nil
			}
		}
	case model.EntityProductionReceipt:
		for _, p := range m.receipts {
			if p.ProductionOrderID == parentID && p.Active && p.ID != exclude {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memRepo) CountActive(ctx context.Context, entity model.Entity) (int, int, error) {
	var active, inactive int
	for _, ok := range m.activeFlags(entity) {
		if ok {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive, nil
}

func (m *memRepo) activeFlags(entity model.Entity) []bool {
	var flags []bool
	switch entity {
	case model.EntityProductionSheet:
		for _, s := range m.sheets {
			flags = append(flags, s.Active)
		}
	case model.EntityProductionReceipt:
		for _, p := range m.receipts {
			flags = append(flags, p.Active)
		}
	case model.EntityClient:
		for _, c := range m.clients {
			flags = append(flags, c.Active)
		}
	}
	return flags
}

func (m *memRepo) CountBy(ctx context.Context, entity model.Entity, field string) (map[string]int, error) {
	res := map[string]int{}
	switch entity {
	case model.EntityProductionSheet:
		for _, s := range m.sheets {
			if !s.Active {
				continue
			}
			switch field {
			case "stage":
				res[string(s.Stage)]++
			case "machine":
				res[strconv.Itoa(s.Machine)]++
			}
		}
	case model.EntityProductionReceipt:
		for _, p := range m.receipts {
			if !p.Active {
				continue
			}
			switch field {
			case "paymentStatus":
				res[string(p.PaymentStatus)]++
			case "paymentMethod":
				res[string(p.PaymentMethod)]++
			}
		}
	}
	return res, nil
}

func (m *memRepo) CreateUser(ctx context.Context, u *model.User) error {
	for _, other := range m.users {
		if other.Email == u.Email {
			return apperror.ErrEmailExists
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memRepo) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return get(m.users, id, apperror.ErrUserRecordNotFound)
}

func (m *memRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.ErrUserRecordNotFound
}

func (m *memRepo) ListUsers(ctx context.Context, q model.ListQuery) (model.Page[model.User], error) {
	return page(m.users), nil
}

func (m *memRepo) UpdateUser(ctx context.Context, u *model.User) error {
	return put(m.users, u.ID, *u, apperror.ErrUserRecordNotFound)
}

func (m *memRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte, at time.Time) error {
	return modify(m.users, id, apperror.ErrUserRecordNotFound, func(u *model.User) { u.PasswordHash, u.UpdatedAt = hash, at })
}

func (m *memRepo) RecordFailedLogin(ctx context.Context, id uuid.UUID, at time.Time, maxAttempts int, lockUntil time.Time) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.ErrUserRecordNotFound
	}
	expired := u.LockUntil != nil && !u.LockUntil.After(at)
	if expired {
		u.LoginAttempts = 1
		u.LockUntil = nil
	} else {
		u.LoginAttempts++
	}
	if u.LoginAttempts >= maxAttempts {
		u.LockUntil = &lockUntil
	}
	u.UpdatedAt = at
	m.users[id] = u
	return &u, nil
}

func (m *memRepo) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return modify(m.users, id, apperror.ErrUserRecordNotFound, func(u *model.User) {
		u.LoginAttempts, u.LockUntil, u.LastLogin = 0, nil, &at
	})
}

func (m *memRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return modify(m.users, id, apperror.ErrUserRecordNotFound, func(u *model.User) { u.LastLogin = &at })
}

func (m *memRepo) UnlockUser(ctx context.Context, id uuid.UUID, at time.Time) error {
	return modify(m.users, id, apperror.ErrUserRecordNotFound, func(u *model.User) {
		u.LoginAttempts, u.LockUntil, u.UpdatedAt = 0, nil, at
	})
}

func (m *memRepo) AdminExists(ctx context.Context) (bool, error) {
	for _, u := range m.users {
		if u.Role == model.RoleAdmin && u.Active {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) CreateClient(ctx context.Context, c *model.Client) error {
	for _, other := range m.clients {
		if other.Active && other.TaxID == c.TaxID {
			return apperror.ErrTaxIDExists
		}
	}
	m.clients[c.ID] = *c
	return nil
}

func (m *memRepo) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return get(m.clients, id, apperror.ErrClientNotFound)
}

func (m *memRepo) ListClients(ctx context.Context, q model.ListQuery) (model.Page[model.Client], error) {
	return page(m.clients), nil
}

func (m *memRepo) UpdateClient(ctx context.Context, c *model.Client) error {
	return put(m.clients, c.ID, *c, apperror.ErrClientNotFound)
}

func (m *memRepo) CreateDevelopment(ctx context.Context, d *model.Development) error {
	if m.referenceConflicts > 0 {
		m.referenceConflicts--
		return apperror.ErrReferenceConflict
	}
	for _, other := range m.developments {
		if other.Reference == d.Reference {
			return apperror.ErrReferenceConflict
		}
	}
	m.developments[d.ID] = *d
	return nil
}

func (m *memRepo) GetDevelopment(ctx context.Context, id uuid.UUID) (*model.Development, error) {
	return get(m.developments, id, apperror.ErrDevelopmentNotFound)
}

func (m *memRepo) GetDevelopmentByReference(ctx context.Context, ref string) (*model.Development, error) {
	return byReference(m.developments, ref, apperror.ErrDevelopmentNotFound,
		func(d model.Development) (string, bool, time.Time) { return d.Reference, d.Active, d.CreatedAt })
}

func (m *memRepo) ListDevelopments(ctx context.Context, q model.ListQuery) (model.Page[model.Development], error) {
	return page(m.developments), nil
}

func (m *memRepo) UpdateDevelopment(ctx context.Context, d *model.Development) error {
	return put(m.developments, d.ID, *d, apperror.ErrDevelopmentNotFound)
}

func (m *memRepo) LastDevelopmentReference(ctx context.Context, prefix string) (string, error) {
	var last string
	for _, d := range m.developments {
		if strings.HasPrefix(d.Reference, prefix) && d.Reference > last {
			last = d.Reference
		}
	}
	return last, nil
}

func (m *memRepo) CreateProductionOrder(ctx context.Context, o *model.ProductionOrder) error {
	if err := m.fail("CreateProductionOrder"); err != nil {
		return err
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memRepo) GetProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	return get(m.orders, id, apperror.ErrProductionOrderNotFound)
}

func (m *memRepo) GetProductionOrderByReference(ctx context.Context, ref string) (*model.ProductionOrder, error) {
	return byReference(m.orders, ref, apperror.ErrProductionOrderNotFound,
		func(o model.ProductionOrder) (string, bool, time.Time) { return o.Reference, o.Active, o.CreatedAt })
}

func (m *memRepo) ListProductionOrders(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionOrder], error) {
	return page(m.orders), nil
}

func (m *memRepo) UpdateProductionOrder(ctx context.Context, o *model.ProductionOrder) error {
	return put(m.orders, o.ID, *o, apperror.ErrProductionOrderNotFound)
}

func (m *memRepo) SetProductionOrderStatus(ctx context.Context, id uuid.UUID, status model.ProductionOrderStatus, at time.Time) error {
	if err := m.fail("SetProductionOrderStatus"); err != nil {
		return err
	}
	return modify(m.orders, id, apperror.ErrProductionOrderNotFound, func(o *model.ProductionOrder) {
		o.Status, o.UpdatedAt = status, at
	})
}

func (m *memRepo) CreateProductionSheet(ctx context.Context, s *model.ProductionSheet) error {
	m.sheets[s.ID] = *s
	return nil
}

func (m *memRepo) GetProductionSheet(ctx context.Context, id uuid.UUID) (*model.ProductionSheet, error) {
	return get(m.sheets, id, apperror.ErrProductionSheetNotFound)
}

func (m *memRepo) GetProductionSheetForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductionSheet, error) {
	return m.GetProductionSheet(ctx, id)
}

func (m *memRepo) GetProductionSheetByReference(ctx context.Context, ref string) (*model.ProductionSheet, error) {
	return byReference(m.sheets, ref, apperror.ErrProductionSheetNotFound,
		func(s model.ProductionSheet) (string, bool, time.Time) { return s.Reference, s.Active, s.CreatedAt })
}

func (m *memRepo) ListProductionSheets(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionSheet], error) {
	return page(m.sheets), nil
}

func (m *memRepo) UpdateProductionSheet(ctx context.Context, s *model.ProductionSheet) error {
	return put(m.sheets, s.ID, *s, apperror.ErrProductionSheetNotFound)
}

func (m *memRepo) CreateDeliverySheet(ctx context.Context, d *model.DeliverySheet) error {
	m.deliveries[d.ID] = *d
	return nil
}

func (m *memRepo) GetDeliverySheet(ctx context.Context, id uuid.UUID) (*model.DeliverySheet, error) {
	return get(m.deliveries, id, apperror.ErrDeliverySheetNotFound)
}

func (m *memRepo) GetDeliverySheetByReference(ctx context.Context, ref string) (*model.DeliverySheet, error) {
	return byReference(m.deliveries, ref, apperror.ErrDeliverySheetNotFound,
		func(d model.DeliverySheet) (string, bool, time.Time) { return d.Reference, d.Active, d.CreatedAt })
}

func (m *memRepo) ListDeliverySheets(ctx context.Context, q model.ListQuery) (model.Page[model.DeliverySheet], error) {
	return page(m.deliveries), nil
}

func (m *memRepo) UpdateDeliverySheet(ctx context.Context, d *model.DeliverySheet) error {
	return put(m.deliveries, d.ID, *d, apperror.ErrDeliverySheetNotFound)
}

func (m *memRepo) CreateProductionReceipt(ctx context.Context, p *model.ProductionReceipt) error {
	m.receipts[p.ID] = *p
	return nil
}

func (m *memRepo) GetProductionReceipt(ctx context.Context, id uuid.UUID) (*model.ProductionReceipt, error) {
	return get(m.receipts, id, apperror.ErrProductionReceiptNotFound)
}

func (m *memRepo) GetProductionReceiptByReference(ctx context.Context, ref string) (*model.ProductionReceipt, error) {
	return byReference(m.receipts, ref, apperror.ErrProductionReceiptNotFound,
		func(p model.ProductionReceipt) (string, bool, time.Time) { return p.Reference, p.Active, p.CreatedAt })
}

func (m *memRepo) ListProductionReceipts(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionReceipt], error) {
	return page(m.receipts), nil
}

func (m *memRepo) UpdateProductionReceipt(ctx context.Context, p *model.ProductionReceipt) error {
	return put(m.receipts, p.ID, *p, apperror.ErrProductionReceiptNotFound)
}

func (m *memRepo) ReceiptTotals(ctx context.Context) (model.ReceiptTotals, error) {
	var t model.ReceiptTotals
	for _, p := range m.receipts {
		if !p.Active {
			continue
		}
		t.TotalAmount = t.TotalAmount.Add(p.TotalAmount)
		t.PaidAmount = t.PaidAmount.Add(p.PaidAmount)
	}
	t.RemainingAmount = t.TotalAmount.Sub(t.PaidAmount)
	return t, nil
}

func get[T any](store map[uuid.UUID]T, id uuid.UUID, notFound error) (*T, error) {
	v, ok := store[id]
	if !ok {
		return nil, notFound
	}
	return &v, nil
}

func put[T any](store map[uuid.UUID]T, id uuid.UUID, v T, notFound error) error {
	if _, ok := store[id]; !ok {
		return notFound
	}
	store[id] = v
	return nil
}

func page[T any](store map[uuid.UUID]T) model.Page[T] {
	items := make([]T, 0, len(store))
	for _, v := range store {
		items = append(items, v)
	}
	return model.Page[T]{Items: items, Total: len(items)}
}

func byReference[T any](store map[uuid.UUID]T, ref string, notFound error, key func(T) (string, bool, time.Time)) (*T, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))

	var matches []T
	for _, v := range store {
		if r, _, _ := key(v); r == ref {
			matches = append(matches, v)
		}
	}
	if len(matches) == 0 {
		return nil, notFound
	}

	sort.Slice(matches, func(i, j int) bool {
		_, ai, ci := key(matches[i])
		_, aj, cj := key(matches[j])
		if ai != aj {
			return ai
		}
		return ci.After(cj)
	})
	return &matches[0], nil
}
