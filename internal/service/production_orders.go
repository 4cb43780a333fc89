package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/validation"
	"github.com/mmeshcher/printflow/internal/workflow"
)

// ListProductionOrders возвращает страницу заказов.
func (s *Service) ListProductionOrders(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionOrder], error) {
	return s.repo.ListProductionOrders(ctx, q)
}

// GetProductionOrder возвращает заказ по идентификатору или коду reference.
func (s *Service) GetProductionOrder(ctx context.Context, key string) (*model.ProductionOrder, error) {
	return lookup(ctx, key, s.repo.GetProductionOrder, s.repo.GetProductionOrderByReference)
}

// CreateProductionOrder создаёт заказ по утверждённой разработке.
// У разработки может быть только один активный заказ, код reference копируется из неё.
func (s *Service) CreateProductionOrder(ctx context.Context, in model.ProductionOrderInput) (*model.ProductionOrder, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var order *model.ProductionOrder
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		dev, err := s.repo.GetDevelopment(ctx, in.DevelopmentID)
		if err != nil {
			return err
		}
		if err := requireActiveParent(dev.Active, "development", dev.Reference); err != nil {
			return err
		}
		if dev.Status != model.DevelopmentApproved {
			return apperror.ErrDevelopmentNotApproved.Withf("development %s is %s, it must be %s",
				dev.Reference, dev.Status, model.DevelopmentApproved)
		}

		exists, err := s.repo.HasActiveChild(ctx, model.EntityProductionOrder, dev.ID, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrProductionOrderExists
		}

		now := s.now()
		order = &model.ProductionOrder{
			ID:            s.newID(),
			DevelopmentID: dev.ID,
			Reference:     dev.Reference,
			Status:        model.OrderCreated,
			Active:        true,
			CreatedAt:     now,
		}
		applyProductionOrderInput(order, in, now)
		return s.repo.CreateProductionOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateProductionOrder заменяет параметры производства. Разработка, код и статус не меняются.
func (s *Service) UpdateProductionOrder(ctx context.Context, id uuid.UUID, in model.ProductionOrderInput) (*model.ProductionOrder, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	o, err := s.repo.GetProductionOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.DevelopmentID != o.DevelopmentID {
		return nil, immutableField("developmentId")
	}
	applyProductionOrderInput(o, in, s.now())

	if err := s.repo.UpdateProductionOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// SetProductionOrderStatus двигает заказ вперёд по этапам. Повтор текущего статуса ничего не меняет.
func (s *Service) SetProductionOrderStatus(ctx context.Context, id uuid.UUID, in model.StatusInput) (*model.ProductionOrder, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	o, err := s.repo.GetProductionOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	status := model.ProductionOrderStatus(strings.ToUpper(in.Status))
	if err := workflow.CheckOrderStatusChange(o.Status, status); err != nil {
		return nil, err
	}
	if status == o.Status {
		return o, nil
	}

	now := s.now()
	if err := s.repo.SetProductionOrderStatus(ctx, o.ID, status, now); err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdatedAt = now
	return o, nil
}

func applyProductionOrderInput(o *model.ProductionOrder, in model.ProductionOrderInput, now time.Time) {
	o.ProductionType = in.ProductionType
	o.FabricType = strings.TrimSpace(in.FabricType)
	o.FabricWidth = in.FabricWidth
	o.HasCraft = in.HasCraft
	o.Observations = in.Observations
	o.UpdatedAt = now
}
