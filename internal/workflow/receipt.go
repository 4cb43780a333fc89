package workflow

import (
	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

// NormalizeReceipt пересчитывает остаток и статус оплаты квитанции.
// Статус PAID выставляется тогда и только тогда, когда оплачено не меньше общей суммы.
func NormalizeReceipt(r *model.ProductionReceipt) error {
	if r.TotalAmount.IsNegative() || r.PaidAmount.IsNegative() {
		return apperror.ErrValidation.Withf("amounts cannot be negative")
	}
	if r.PaidAmount.GreaterThan(r.TotalAmount) {
		return apperror.ErrPaidExceedsTotal
	}

	r.RemainingAmount = r.TotalAmount.Sub(r.PaidAmount)
	if r.PaidAmount.GreaterThanOrEqual(r.TotalAmount) {
		r.PaymentStatus = model.PaymentPaid
	} else {
		r.PaymentStatus = model.PaymentPending
	}
	return nil
}
