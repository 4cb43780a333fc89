// Package workflow содержит правила переходов статусов сущностей производственного цикла.
package workflow

import (
	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

var stageOrder = []model.Stage{model.StagePrinting, model.StageCalendering, model.StageFinished}

var orderStatusOrder = []model.ProductionOrderStatus{
	model.OrderCreated,
	model.OrderPilotProduction,
	model.OrderPilotSent,
	model.OrderPilotApproved,
	model.OrderProductionStarted,
	model.OrderFinalized,
}

var deliveryOrder = []model.DeliveryStatus{model.DeliveryCreated, model.DeliveryOnRoute, model.DeliveryDelivered}

var developmentTransitions = map[model.DevelopmentStatus][]model.DevelopmentStatus{
	model.DevelopmentCreated:          {model.DevelopmentAwaitingApproval, model.DevelopmentApproved, model.DevelopmentCanceled},
	model.DevelopmentAwaitingApproval: {model.DevelopmentCreated, model.DevelopmentApproved, model.DevelopmentCanceled},
	model.DevelopmentApproved:         {model.DevelopmentCanceled},
	model.DevelopmentCanceled:         {},
}

func rank[T comparable](order []T, v T) int {
	for i, s := range order {
		if s == v {
			return i
		}
	}
	return -1
}

// ValidStage сообщает, является ли значение известным этапом.
func ValidStage(s model.Stage) bool {
	return rank(stageOrder, s) >= 0
}

// NextStage возвращает следующий этап. На этапе FINISHED возвращает ErrStageFinished.
func NextStage(s model.Stage) (model.Stage, error) {
	i := rank(stageOrder, s)
	if i < 0 {
		return "", apperror.ErrInvalidTransition.Withf("unknown stage %q", s)
	}
	if i == len(stageOrder)-1 {
		return "", apperror.ErrStageFinished
	}
	return stageOrder[i+1], nil
}

// CheckStageChange допускает сохранение этапа или переход ровно на один шаг вперёд.
func CheckStageChange(from, to model.Stage) error {
	if from == to {
		return nil
	}
	next, err := NextStage(from)
	if err != nil {
		return err
	}
	if to != next {
		return apperror.ErrInvalidTransition.Withf("stage can only move from %s to %s", from, next)
	}
	return nil
}

// ValidOrderStatus сообщает, является ли значение известным статусом заказа.
func ValidOrderStatus(s model.ProductionOrderStatus) bool {
	return rank(orderStatusOrder, s) >= 0
}

// CheckOrderStatusChange допускает только движение вперёд; FINALIZED является конечным статусом.
func CheckOrderStatusChange(from, to model.ProductionOrderStatus) error {
	fi, ti := rank(orderStatusOrder, from), rank(orderStatusOrder, to)
	if fi < 0 || ti < 0 {
		return apperror.ErrInvalidTransition.Withf("unknown production order status %q", to)
	}
	if ti < fi {
		return apperror.ErrInvalidTransition.Withf("production order status cannot go back from %s to %s", from, to)
	}
	return nil
}

// CheckDevelopmentStatusChange проверяет переход по таблице допустимых переходов разработки.
func CheckDevelopmentStatusChange(from, to model.DevelopmentStatus) error {
	if from == to {
		return nil
	}
	allowed, ok := developmentTransitions[from]
	if !ok {
		return apperror.ErrInvalidTransition.Withf("unknown development status %q", from)
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return apperror.ErrInvalidTransition.Withf("development cannot move from %s to %s", from, to)
}

// CheckDeliveryStatusChange допускает переход доставки на один шаг вперёд.
func CheckDeliveryStatusChange(from, to model.DeliveryStatus) error {
	fi, ti := rank(deliveryOrder, from), rank(deliveryOrder, to)
	switch {
	case fi < 0 || ti < 0:
		return apperror.ErrInvalidTransition.Withf("unknown delivery status %q", to)
	case ti == fi:
		return nil
	case ti != fi+1:
		return apperror.ErrInvalidTransition.Withf("delivery cannot move from %s to %s", from, to)
	}
	return nil
}

