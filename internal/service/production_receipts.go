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

// ListProductionReceipts возвращает страницу квитанций.
func (s *Service) ListProductionReceipts(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionReceipt], error) {
	return s.repo.ListProductionReceipts(ctx, q)
}

// GetProductionReceipt возвращает квитанцию по идентификатору или коду reference.
func (s *Service) GetProductionReceipt(ctx context.Context, key string) (*model.ProductionReceipt, error) {
	return lookup(ctx, key, s.repo.GetProductionReceipt, s.repo.GetProductionReceiptByReference)
}

// CreateProductionReceipt создаёт квитанцию по завершённому заказу.
// У заказа может быть только одна активная квитанция.
func (s *Service) CreateProductionReceipt(ctx context.Context, in model.ProductionReceiptInput) (*model.ProductionReceipt, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var p *model.ProductionReceipt
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetProductionOrder(ctx, in.ProductionOrderID)
		if err != nil {
			return err
		}
		if err := requireActiveParent(order.Active, "production order", order.Reference); err != nil {
			return err
		}
		if order.Status != model.OrderFinalized {
			return apperror.ErrProductionOrderNotFinalized.Withf("production order %s is %s, it must be %s",
				order.Reference, order.Status, model.OrderFinalized)
		}

		exists, err := s.repo.HasActiveChild(ctx, model.EntityProductionReceipt, order.ID, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrProductionReceiptExists
		}

		now := s.now()
		p = &model.ProductionReceipt{
			ID:                s.newID(),
			ProductionOrderID: order.ID,
			Reference:         order.Reference,
			Active:            true,
			CreatedAt:         now,
		}
		if err := applyReceiptInput(p, in, now); err != nil {
			return err
		}
		return s.repo.CreateProductionReceipt(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProductionReceipt заменяет суммы и условия оплаты. Статус пересчитывается по суммам.
func (s *Service) UpdateProductionReceipt(ctx context.Context, id uuid.UUID, in model.ProductionReceiptInput) (*model.ProductionReceipt, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProductionReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProductionOrderID != p.ProductionOrderID {
		return nil, immutableField("productionOrderId")
	}
	if err := applyReceiptInput(p, in, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProductionReceipt(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetReceiptStatus меняет статус оплаты. PAID погашает остаток целиком,
// PENDING допустим только пока оплачено меньше общей суммы.
func (s *Service) SetReceiptStatus(ctx context.Context, id uuid.UUID, in model.StatusInput) (*model.ProductionReceipt, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProductionReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch status := model.PaymentStatus(strings.ToUpper(in.Status)); status {
	case model.PaymentPaid:
		p.PaidAmount = p.TotalAmount
		if p.PaymentDate == nil {
			p.PaymentDate = &now
		}
	case model.PaymentPending:
		if p.PaidAmount.GreaterThanOrEqual(p.TotalAmount) {
			return nil, apperror.ErrInvalidTransition.Withf("receipt %s is fully paid and cannot be %s",
				p.Reference, model.PaymentPending)
		}
	default:
		return nil, apperror.ErrInvalidTransition.Withf("unknown payment status %q", in.Status)
	}

	if err := workflow.NormalizeReceipt(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = now
	if err := s.repo.UpdateProductionReceipt(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterPayment добавляет платёж к оплаченной сумме квитанции.
func (s *Service) RegisterPayment(ctx context.Context, id uuid.UUID, in model.PaymentInput) (*model.ProductionReceipt, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProductionReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p.PaidAmount = p.PaidAmount.Add(in.Amount)
	if err := workflow.NormalizeReceipt(p); err != nil {
		return nil, err
	}
	p.PaymentDate = in.PaymentDate
	if p.PaymentDate == nil {
		p.PaymentDate = &now
	}
	p.UpdatedAt = now

	if err := s.repo.UpdateProductionReceipt(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func applyReceiptInput(p *model.ProductionReceipt, in model.ProductionReceiptInput, now time.Time) error {
	p.PaymentMethod = in.PaymentMethod
	p.TotalAmount = in.TotalAmount
	p.PaidAmount = in.PaidAmount
	p.DueDate = in.DueDate
	p.PaymentDate = in.PaymentDate
	p.Notes = in.Notes
	p.UpdatedAt = now
	return workflow.NormalizeReceipt(p)
}
