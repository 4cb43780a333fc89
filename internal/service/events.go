package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/printflow/internal/model"
)

// EventStageFinished публикуется, когда производственный лист переходит на этап FINISHED.
const EventStageFinished = "production_sheet.stage_finished"

// Event описывает доменное событие. Обработчики вызываются синхронно в транзакции,
// в которой событие возникло, и их ошибка откатывает всю транзакцию.
type Event interface {
	Name() string
}

// StageFinished сообщает о завершении обработки листа.
type StageFinished struct {
	SheetID           uuid.UUID
	ProductionOrderID uuid.UUID
	At                time.Time
}

// Name реализует Event.
func (StageFinished) Name() string { return EventStageFinished }

// EventHandler обрабатывает доменное событие.
type EventHandler func(ctx context.Context, e Event) error

// Dispatcher доставляет события подписанным обработчикам в порядке подписки.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewDispatcher создаёт пустой диспетчер.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]EventHandler)}
}

// Subscribe добавляет обработчик события name.
func (d *Dispatcher) Subscribe(name string, h EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

// Dispatch вызывает обработчики по очереди и останавливается на первой ошибке.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	d.mu.RLock()
	handlers := d.handlers[e.Name()]
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			return fmt.Errorf("handle %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (s *Service) finalizeProductionOrder(ctx context.Context, e Event) error {
	ev, ok := e.(StageFinished)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}

	order, err := s.repo.GetProductionOrder(ctx, ev.ProductionOrderID)
	if err != nil {
		return err
	}
	if order.Status == model.OrderFinalized {
		return nil
	}

	if err := s.repo.SetProductionOrderStatus(ctx, order.ID, model.OrderFinalized, ev.At); err != nil {
		return err
	}

	ordersFinalized.Inc()
	s.logger.Info("production order finalized",
		zap.String("order", order.Reference),
		zap.String("sheet_id", ev.SheetID.String()),
		zap.String("previous_status", string(order.Status)),
	)
	return nil
}
