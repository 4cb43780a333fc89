package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/validation"
	"github.com/mmeshcher/printflow/internal/workflow"
)

// ListDeliverySheets возвращает страницу доставок.
func (s *Service) ListDeliverySheets(ctx context.Context, q model.ListQuery) (model.Page[model.DeliverySheet], error) {
	return s.repo.ListDeliverySheets(ctx, q)
}

// GetDeliverySheet возвращает доставку по идентификатору или коду reference.
func (s *Service) GetDeliverySheet(ctx context.Context, key string) (*model.DeliverySheet, error) {
	return lookup(ctx, key, s.repo.GetDeliverySheet, s.repo.GetDeliverySheetByReference)
}

// CreateDeliverySheet создаёт доставку для листа, у которого ещё нет активной доставки.
func (s *Service) CreateDeliverySheet(ctx context.Context, in model.DeliverySheetInput) (*model.DeliverySheet, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var d *model.DeliverySheet
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		sheet, err := s.repo.GetProductionSheet(ctx, in.ProductionSheetID)
		if err != nil {
			return err
		}
		if err := requireActiveParent(sheet.Active, "production sheet", sheet.Reference); err != nil {
			return err
		}

		exists, err := s.repo.HasActiveChild(ctx, model.EntityDeliverySheet, sheet.ID, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrDeliverySheetExists
		}

		now := s.now()
		d = &model.DeliverySheet{
			ID:                s.newID(),
			ProductionSheetID: sheet.ID,
			Reference:         sheet.Reference,
			TotalValue:        in.TotalValue,
			Address:           in.Address,
			Status:            model.DeliveryCreated,
			DeliveryDate:      in.DeliveryDate,
			Notes:             in.Notes,
			Active:            true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return s.repo.CreateDeliverySheet(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDeliverySheet заменяет стоимость, адрес, дату и примечания доставки.
func (s *Service) UpdateDeliverySheet(ctx context.Context, id uuid.UUID, in model.DeliverySheetInput) (*model.DeliverySheet, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	d, err := s.repo.GetDeliverySheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProductionSheetID != d.ProductionSheetID {
		return nil, immutableField("productionSheetId")
	}

	d.TotalValue = in.TotalValue
	d.Address = in.Address
	d.DeliveryDate = in.DeliveryDate
	d.Notes = in.Notes
	d.UpdatedAt = s.now()

	if err := s.repo.UpdateDeliverySheet(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetDeliveryStatus двигает доставку на один шаг вперёд. DELIVERED проставляет дату доставки.
func (s *Service) SetDeliveryStatus(ctx context.Context, id uuid.UUID, in model.StatusInput) (*model.DeliverySheet, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	d, err := s.repo.GetDeliverySheet(ctx, id)
	if err != nil {
		return nil, err
	}

	status := model.DeliveryStatus(strings.ToUpper(in.Status))
	if err := workflow.CheckDeliveryStatusChange(d.Status, status); err != nil {
		return nil, err
	}
	if status == d.Status {
		return d, nil
	}

	now := s.now()
	d.Status = status
	if status == model.DeliveryDelivered && d.DeliveryDate == nil {
		d.DeliveryDate = &now
	}
	d.UpdatedAt = now

	if err := s.repo.UpdateDeliverySheet(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
