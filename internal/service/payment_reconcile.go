package service

import (
	"github.com/tavolo-next/internal/models"

	"github.com/shopspring/decimal"
)

// paymentTolerance 对账容差，总额两侧各 0.01 视为已付清
var paymentTolerance = decimal.New(1, -2)

// reconcileResult 对账结果，订单上的支付派生字段全部来自这里
type reconcileResult struct {
	Status      models.PaymentStatus
	TotalPaid   models.Money
	Remaining   models.Money
	IsFullyPaid bool
}

// reconcilePayments 基于全量支付记录重算订单支付状态。
// 规则：净已付 = Σ(金额 - 已退金额)，失败与待支付记录不计入；
// 存在至少一笔支付且全部退款时整单记为 refunded。
func reconcilePayments(total models.Money, payments []models.OrderPayment) reconcileResult {
	paid := decimal.Zero
	hasPayment := false
	allRefunded := true
	for _, payment := range payments {
		switch payment.Status {
		case models.PaymentStatePending, models.PaymentStateFailed:
			continue
		}
		hasPayment = true
		if !payment.IsRefunded {
			allRefunded = false
		}
		net := payment.Amount.Decimal.Sub(payment.RefundedAmount.Decimal)
		if net.IsNegative() {
			net = decimal.Zero
		}
		paid = paid.Add(net)
	}

	// 剩余额恒等于 总额 - 净已付，超付时为负数
	remaining := total.Decimal.Sub(paid)

	result := reconcileResult{
		TotalPaid: models.NewMoneyFromDecimal(paid),
		Remaining: models.NewMoneyFromDecimal(remaining),
	}

	if hasPayment && allRefunded {
		result.Status = models.PaymentStatusRefunded
		return result
	}

	diff := total.Decimal.Sub(paid)
	switch {
	case paid.GreaterThan(total.Decimal.Add(paymentTolerance)):
		result.Status = models.PaymentStatusOverpaid
		result.IsFullyPaid = true
	case hasPayment && diff.Abs().LessThanOrEqual(paymentTolerance):
		result.Status = models.PaymentStatusCompleted
		result.IsFullyPaid = true
	case paid.IsPositive():
		result.Status = models.PaymentStatusPartiallyPaid
	default:
		result.Status = models.PaymentStatusPending
	}
	return result
}

// reconcileUpdates 生成写回订单的字段集合
func reconcileUpdates(result reconcileResult) map[string]interface{} {
	return map[string]interface{}{
		"payment_status":   result.Status,
		"total_paid":       result.TotalPaid,
		"remaining_amount": result.Remaining,
		"is_fully_paid":    result.IsFullyPaid,
	}
}
