package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

func TestNextStage(t *testing.T) {
	next, err := NextStage(model.StagePrinting)
	require.NoError(t, err)
	assert.Equal(t, model.StageCalendering, next)

	next, err = NextStage(model.StageCalendering)
	require.NoError(t, err)
	assert.Equal(t, model.StageFinished, next)

	_, err = NextStage(model.StageFinished)
	assert.ErrorIs(t, err, apperror.ErrStageFinished)
}

func TestCheckStageChange(t *testing.T) {
	tests := []struct {
		name    string
		from    model.Stage
		to      model.Stage
		wantErr error
	}{
		{name: "same stage", from: model.StageCalendering, to: model.StageCalendering},
		{name: "one step", from: model.StagePrinting, to: model.StageCalendering},
		{name: "skip", from: model.StagePrinting, to: model.StageFinished, wantErr: apperror.ErrInvalidTransition},
		{name: "backwards", from: model.StageCalendering, to: model.StagePrinting, wantErr: apperror.ErrInvalidTransition},
		{name: "from finished", from: model.StageFinished, to: model.StagePrinting, wantErr: apperror.ErrStageFinished},
		{name: "unknown", from: "DRYING", to: model.StagePrinting, wantErr: apperror.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStageChange(tt.from, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckOrderStatusChange(t *testing.T) {
	assert.NoError(t, CheckOrderStatusChange(model.OrderCreated, model.OrderPilotProduction))
	assert.NoError(t, CheckOrderStatusChange(model.OrderPilotApproved, model.OrderFinalized))
	assert.NoError(t, CheckOrderStatusChange(model.OrderFinalized, model.OrderFinalized))
	assert.ErrorIs(t, CheckOrderStatusChange(model.OrderPilotSent, model.OrderCreated), apperror.ErrInvalidTransition)
	assert.ErrorIs(t, CheckOrderStatusChange(model.OrderCreated, "SHIPPED"), apperror.ErrInvalidTransition)
}

func TestCheckDevelopmentStatusChange(t *testing.T) {
	assert.NoError(t, CheckDevelopmentStatusChange(model.DevelopmentCreated, model.DevelopmentAwaitingApproval))
	assert.NoError(t, CheckDevelopmentStatusChange(model.DevelopmentAwaitingApproval, model.DevelopmentApproved))
	assert.NoError(t, CheckDevelopmentStatusChange(model.DevelopmentApproved, model.DevelopmentCanceled))
	assert.ErrorIs(t, CheckDevelopmentStatusChange(model.DevelopmentApproved, model.DevelopmentCreated), apperror.ErrInvalidTransition)
	assert.ErrorIs(t, CheckDevelopmentStatusChange(model.DevelopmentCanceled, model.DevelopmentApproved), apperror.ErrInvalidTransition)
}

func TestCheckDeliveryStatusChange(t *testing.T) {
	assert.NoError(t, CheckDeliveryStatusChange(model.DeliveryCreated, model.DeliveryOnRoute))
	assert.NoError(t, CheckDeliveryStatusChange(model.DeliveryOnRoute, model.DeliveryDelivered))
	assert.ErrorIs(t, CheckDeliveryStatusChange(model.DeliveryCreated, model.DeliveryDelivered), apperror.ErrInvalidTransition)
	assert.ErrorIs(t, CheckDeliveryStatusChange(model.DeliveryDelivered, model.DeliveryOnRoute), apperror.ErrInvalidTransition)
}

func TestDevelopmentReference(t *testing.T) {
	prefix := DevelopmentPrefix(2025, "abc")
	assert.Equal(t, "25ABC", prefix)
	assert.Equal(t, "25ABC0001", DevelopmentReference(prefix, 1))
	assert.Equal(t, "05XY0042", DevelopmentReference(DevelopmentPrefix(2005, "XY"), 42))
}

func TestNextSequence(t *testing.T) {
	n, err := NextSequence("", "25ABC")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = NextSequence("25ABC0001", "25ABC")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = NextSequence("25ABC9999", "25ABC")
	assert.Error(t, err)

	_, err = NextSequence("25XYZ0001", "25ABC")
	assert.Error(t, err)
}

func TestNormalizeReceipt(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		paid       string
		wantStatus model.PaymentStatus
		wantRemain string
		wantErr    error
	}{
		{name: "nothing paid", total: "100", paid: "0", wantStatus: model.PaymentPending, wantRemain: "100"},
		{name: "partially paid", total: "100", paid: "40.5", wantStatus: model.PaymentPending, wantRemain: "59.5"},
		{name: "fully paid", total: "100", paid: "100", wantStatus: model.PaymentPaid, wantRemain: "0"},
		{name: "overpaid", total: "100", paid: "100.01", wantErr: apperror.ErrPaidExceedsTotal},
		{name: "negative", total: "100", paid: "-1", wantErr: apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &model.ProductionReceipt{
				TotalAmount:   decimal.RequireFromString(tt.total),
				PaidAmount:    decimal.RequireFromString(tt.paid),
				PaymentStatus: model.PaymentPaid,
			}
			err := NormalizeReceipt(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, r.PaymentStatus)
			assert.True(t, decimal.RequireFromString(tt.wantRemain).Equal(r.RemainingAmount))
		})
	}
}

// Статус выставляется по сумме в обе стороны, независимо от прежнего значения.
func TestNormalizeReceiptCorrectsStaleStatus(t *testing.T) {
	r := &model.ProductionReceipt{
		TotalAmount:   decimal.NewFromInt(50),
		PaidAmount:    decimal.NewFromInt(50),
		PaymentStatus: model.PaymentPending,
	}
	require.NoError(t, NormalizeReceipt(r))
	assert.Equal(t, model.PaymentPaid, r.PaymentStatus)

	r.PaidAmount = decimal.NewFromInt(10)
	require.NoError(t, NormalizeReceipt(r))
	assert.Equal(t, model.PaymentPending, r.PaymentStatus)
}
