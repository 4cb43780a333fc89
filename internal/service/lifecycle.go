package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

// statsGroups задаёт поля, по которым группируется статистика сущности.
var statsGroups = map[model.Entity][]string{
	model.EntityUser:              {"role"},
	model.EntityDevelopment:       {"status"},
	model.EntityProductionOrder:   {"status", "productionType"},
	model.EntityProductionSheet:   {"stage", "machine"},
	model.EntityDeliverySheet:     {"status"},
	model.EntityProductionReceipt: {"paymentStatus", "paymentMethod"},
}

// Deactivate выполняет мягкое удаление записи. Пользователь не может отключить сам себя.
func (s *Service) Deactivate(ctx context.Context, actor *model.User, entity model.Entity, id uuid.UUID) error {
	if entity == model.EntityUser && actor != nil && actor.ID == id {
		return apperror.ErrSelfModification
	}
	if err := s.repo.SetActive(ctx, entity, id, false, s.now()); err != nil {
		return err
	}
	s.logger.Info("record deactivated", zap.String("entity", string(entity)), zap.Stringer("id", id))
	return nil
}

// Activate восстанавливает запись. Восстановление, нарушающее связь «один к одному»,
// отклоняется с соответствующей ошибкой конфликта.
func (s *Service) Activate(ctx context.Context, entity model.Entity, id uuid.UUID) error {
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkReactivation(ctx, entity, id); err != nil {
			return err
		}
		return s.repo.SetActive(ctx, entity, id, true, s.now())
	})
	if err != nil {
		return err
	}
	s.logger.Info("record activated", zap.String("entity", string(entity)), zap.Stringer("id", id))
	return nil
}

func (s *Service) checkReactivation(ctx context.Context, entity model.Entity, id uuid.UUID) error {
	var (
		parentID uuid.UUID
		conflict error
	)
	switch entity {
	case model.EntityProductionOrder:
		o, err := s.repo.GetProductionOrder(ctx, id)
		if err != nil {
			return err
		}
		parentID, conflict = o.DevelopmentID, apperror.ErrProductionOrderExists
	case model.EntityDeliverySheet:
		d, err := s.repo.GetDeliverySheet(ctx, id)
		if err != nil {
			return err
		}
		parentID, conflict = d.ProductionSheetID, apperror.ErrDeliverySheetExists
	case model.EntityProductionReceipt:
		p, err := s.repo.GetProductionReceipt(ctx, id)
		if err != nil {
			return err
		}
		parentID, conflict = p.ProductionOrderID, apperror.ErrProductionReceiptExists
	default:
		// клиенты проверяются уникальным индексом по tax_id
		return nil
	}

	exists, err := s.repo.HasActiveChild(ctx, entity, parentID, id)
	if err != nil {
		return err
	}
	if exists {
		return conflict
	}
	return nil
}

// Stats возвращает количество активных и неактивных записей и группировки активных.
// Для квитанций дополнительно считаются суммы.
func (s *Service) Stats(ctx context.Context, entity model.Entity) (*model.Stats, error) {
	active, inactive, err := s.repo.CountActive(ctx, entity)
	if err != nil {
		return nil, err
	}
	stats := &model.Stats{Active: active, Inactive: inactive}

	if fields := statsGroups[entity]; len(fields) > 0 {
		stats.Groups = make(map[string]map[string]int, len(fields))
		for _, field := range fields {
			counts, err := s.repo.CountBy(ctx, entity, field)
			if err != nil {
				return nil, fmt.Errorf("count %s by %s: %w", entity, field, err)
			}
			stats.Groups[field] = counts
		}
	}

	if entity == model.EntityProductionReceipt {
		totals, err := s.repo.ReceiptTotals(ctx)
		if err != nil {
			return nil, err
		}
		stats.Amounts = &totals
	}
	return stats, nil
}
