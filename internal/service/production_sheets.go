package service

import (
	"context"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/authz"
	"github.com/mmeshcher/printflow/internal/model"
	"github.com/mmeshcher/printflow/internal/validation"
	"github.com/mmeshcher/printflow/internal/workflow"
)

// sheetReadOnly перечисляет поля листа, которые не меняются через обновление.
var sheetReadOnly = map[string]bool{
	"id":                true,
	"productionOrderId": true,
	"reference":         true,
	"active":            true,
	"createdAt":         true,
	"updatedAt":         true,
}

var sheetEditable = map[string]bool{
	"entryDate":        true,
	"expectedExitDate": true,
	"machine":          true,
	"stage":            true,
	"temperature":      true,
	"velocity":         true,
	"productionNotes":  true,
}

var sheetDates = []string{"entryDate", "expectedExitDate"}

// ListProductionSheets возвращает страницу производственных листов.
func (s *Service) ListProductionSheets(ctx context.Context, q model.ListQuery) (model.Page[model.ProductionSheet], error) {
	return s.repo.ListProductionSheets(ctx, q)
}

// GetProductionSheet возвращает лист по идентификатору или коду reference.
func (s *Service) GetProductionSheet(ctx context.Context, key string) (*model.ProductionSheet, error) {
	return lookup(ctx, key, s.repo.GetProductionSheet, s.repo.GetProductionSheetByReference)
}

// CreateProductionSheet создаёт прогон заказа на машине. Лист начинается с этапа PRINTING.
func (s *Service) CreateProductionSheet(ctx context.Context, in model.ProductionSheetInput) (*model.ProductionSheet, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	order, err := s.repo.GetProductionOrder(ctx, in.ProductionOrderID)
	if err != nil {
		return nil, err
	}
	if err := requireActiveParent(order.Active, "production order", order.Reference); err != nil {
		return nil, err
	}

	now := s.now()
	sheet := &model.ProductionSheet{
		ID:                s.newID(),
		ProductionOrderID: order.ID,
		Reference:         order.Reference,
		EntryDate:         in.EntryDate,
		ExpectedExitDate:  in.ExpectedExitDate,
		Machine:           in.Machine,
		Stage:             model.StagePrinting,
		Temperature:       in.Temperature,
		Velocity:          in.Velocity,
		ProductionNotes:   in.ProductionNotes,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreateProductionSheet(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// UpdateProductionSheet накладывает присланные поля на сохранённый лист.
//
// Для роли PRINTING заказ должен быть в статусе PILOT_PRODUCTION, а изменять можно
// только этап и машину: изменение любого другого поля отклоняет запрос целиком,
// присланные без изменений поля отбрасываются. Этап для всех ролей может остаться
// прежним или сдвинуться на один шаг вперёд.
func (s *Service) UpdateProductionSheet(ctx context.Context, actor *model.User, id uuid.UUID, fields map[string]any) (*model.ProductionSheet, error) {
	return s.updateProductionSheet(ctx, actor, id, fields, nil)
}

// updateProductionSheet выполняет обновление под блокировкой строки.
// guard, если задан, проверяет текущее состояние листа до слияния полей.
func (s *Service) updateProductionSheet(ctx context.Context, actor *model.User, id uuid.UUID, fields map[string]any, guard func(*model.ProductionSheet) error) (*model.ProductionSheet, error) {
	var sheet *model.ProductionSheet
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sheet, err = s.repo.GetProductionSheetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		incoming := fields
		if actor.Role == model.RolePrinting {
			if err := s.checkPrintingWindow(ctx, sheet); err != nil {
				return err
			}
		}
		if guard != nil {
			if err := guard(sheet); err != nil {
				return err
			}
		}
		if actor.Role == model.RolePrinting {
			incoming, err = authz.Restrict(authz.PrintingFields, sheetValues(sheet), fields)
			if err != nil {
				return err
			}
		}

		upd, err := mergeSheetUpdate(sheet, incoming)
		if err != nil {
			return err
		}
		return s.applySheetUpdate(ctx, sheet, upd)
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// SetProductionSheetStage устанавливает этап явно. Допустим только следующий этап.
func (s *Service) SetProductionSheetStage(ctx context.Context, actor *model.User, id uuid.UUID, in model.StageInput) (*model.ProductionSheet, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.updateProductionSheet(ctx, actor, id, map[string]any{"stage": string(in.Stage)},
		func(sheet *model.ProductionSheet) error {
			if sheet.Stage == in.Stage {
				return apperror.ErrInvalidTransition.Withf("production sheet is already at stage %s", in.Stage)
			}
			return nil
		})
}

// AdvanceProductionSheetStage переводит лист на следующий этап.
// На этапе FINISHED возвращает ErrStageFinished и ничего не меняет.
func (s *Service) AdvanceProductionSheetStage(ctx context.Context, actor *model.User, id uuid.UUID) (*model.ProductionSheet, error) {
	var sheet *model.ProductionSheet
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sheet, err = s.repo.GetProductionSheetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if actor.Role == model.RolePrinting {
			if err := s.checkPrintingWindow(ctx, sheet); err != nil {
				return err
			}
		}

		next, err := workflow.NextStage(sheet.Stage)
		if err != nil {
			return err
		}
		upd := sheetUpdateOf(sheet)
		upd.Stage = next
		return s.applySheetUpdate(ctx, sheet, upd)
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *Service) checkPrintingWindow(ctx context.Context, sheet *model.ProductionSheet) error {
	order, err := s.repo.GetProductionOrder(ctx, sheet.ProductionOrderID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderPilotProduction {
		return apperror.ErrStatusNotAllowed.Withf("production order %s is %s, changes are allowed only during %s",
			order.Reference, order.Status, model.OrderPilotProduction)
	}
	return nil
}

// applySheetUpdate сохраняет лист и при переходе на FINISHED публикует StageFinished
// в той же транзакции.
func (s *Service) applySheetUpdate(ctx context.Context, sheet *model.ProductionSheet, upd model.ProductionSheetUpdate) error {
	if err := workflow.CheckStageChange(sheet.Stage, upd.Stage); err != nil {
		return err
	}
	finished := sheet.Stage != model.StageFinished && upd.Stage == model.StageFinished

	now := s.now()
	sheet.EntryDate = upd.EntryDate
	sheet.ExpectedExitDate = upd.ExpectedExitDate
	sheet.Machine = upd.Machine
	sheet.Stage = upd.Stage
	sheet.Temperature = upd.Temperature
	sheet.Velocity = upd.Velocity
	sheet.ProductionNotes = upd.ProductionNotes
	sheet.UpdatedAt = now

	if err := s.repo.UpdateProductionSheet(ctx, sheet); err != nil {
		return err
	}
	if !finished {
		return nil
	}
	return s.events.Dispatch(ctx, StageFinished{
		SheetID:           sheet.ID,
		ProductionOrderID: sheet.ProductionOrderID,
		At:                now,
	})
}

// sheetValues возвращает сохранённые значения листа в виде, сравнимом с JSON-запросом.
func sheetValues(sheet *model.ProductionSheet) map[string]any {
	return map[string]any{
		"id":                sheet.ID.String(),
		"productionOrderId": sheet.ProductionOrderID.String(),
		"reference":         sheet.Reference,
		"entryDate":         sheet.EntryDate,
		"expectedExitDate":  sheet.ExpectedExitDate,
		"machine":           sheet.Machine,
		"stage":             string(sheet.Stage),
		"temperature":       nullDecimalValue(sheet.Temperature),
		"velocity":          nullDecimalValue(sheet.Velocity),
		"productionNotes":   sheet.ProductionNotes,
		"active":            sheet.Active,
		"createdAt":         sheet.CreatedAt,
		"updatedAt":         sheet.UpdatedAt,
	}
}

func nullDecimalValue(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}

func sheetUpdateOf(sheet *model.ProductionSheet) model.ProductionSheetUpdate {
	return model.ProductionSheetUpdate{
		EntryDate:        sheet.EntryDate,
		ExpectedExitDate: sheet.ExpectedExitDate,
		Machine:          sheet.Machine,
		Stage:            sheet.Stage,
		Temperature:      sheet.Temperature,
		Velocity:         sheet.Velocity,
		ProductionNotes:  sheet.ProductionNotes,
	}
}

// mergeSheetUpdate накладывает incoming на сохранённые значения и проверяет результат.
func mergeSheetUpdate(sheet *model.ProductionSheet, incoming map[string]any) (model.ProductionSheetUpdate, error) {
	merged := sheetValues(sheet)
	for field, v := range incoming {
		switch {
		case sheetEditable[field]:
			merged[field] = v
		case sheetReadOnly[field]:
		default:
			return model.ProductionSheetUpdate{}, apperror.ErrInvalidBody.Withf("unknown field %q", field)
		}
	}

	for _, field := range sheetDates {
		if t, ok := authz.AsTime(merged[field]); ok {
			merged[field] = t
		}
	}
	if stage, ok := merged["stage"].(string); ok {
		merged["stage"] = strings.ToUpper(stage)
	}
	for field := range merged {
		if !sheetEditable[field] {
			delete(merged, field)
		}
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return model.ProductionSheetUpdate{}, apperror.ErrInvalidBody.Wrap(err)
	}
	var upd model.ProductionSheetUpdate
	if err := json.Unmarshal(data, &upd); err != nil {
		return model.ProductionSheetUpdate{}, apperror.ErrInvalidBody.Withf("invalid production sheet fields: %v", err)
	}
	if err := validation.Struct(upd); err != nil {
		return model.ProductionSheetUpdate{}, err
	}
	return upd, nil
}
