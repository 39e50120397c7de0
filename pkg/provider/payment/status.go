package payment

import (
	"strings"

	"github.com/amirasaad/payminute/pkg/domain/recharge"
	"github.com/amirasaad/payminute/pkg/domain/withdrawal"
)

var vocabulary = map[string]PaymentStatus{
	// core
	"pending":    PaymentPending,
	"processing": PaymentProcessing,
	"completed":  PaymentCompleted,
	"failed":     PaymentFailed,
	"cancelled":  PaymentCancelled,
	"rejected":   PaymentRejected,
	"refunded":   PaymentRefunded,
	// stripe
	"open":                    PaymentPending,
	"unpaid":                  PaymentPending,
	"requires_payment_method": PaymentPending,
	"requires_action":         PaymentPending,
	"succeeded":               PaymentCompleted,
	"complete":                PaymentCompleted,
	"paid":                    PaymentCompleted,
	"no_payment_required":     PaymentCompleted,
	"in_transit":              PaymentProcessing,
	"expired":                 PaymentCancelled,
	"canceled":                PaymentCancelled,
	"payment_failed":          PaymentFailed,
	// mercado pago
	"approved":     PaymentCompleted,
	"authorized":   PaymentProcessing,
	"in_process":   PaymentProcessing,
	"in_mediation": PaymentProcessing,
	"charged_back": PaymentRefunded,
	// pix gateways
	"concluida":         PaymentCompleted,
	"realizado":         PaymentCompleted,
	"em_processamento":  PaymentProcessing,
	"ativa":             PaymentPending,
	"nao_realizado":     PaymentFailed,
	"removida_pelo_psp": PaymentCancelled,
	"devolvido":         PaymentRefunded,
}

// MapStatus translates a provider status string onto PaymentStatus. Matching
// is case-insensitive and treats '-' and ' ' like '_'. Unknown values map to
// pending so the record waits for a definitive callback.
func MapStatus(raw string) PaymentStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if s, ok := vocabulary[key]; ok {
		return s
	}
	return PaymentPending
}

// WithdrawalStatus collapses a payment status onto the withdrawal lifecycle.
func WithdrawalStatus(s PaymentStatus) withdrawal.Status {
	switch s {
	case PaymentCompleted:
		return withdrawal.StatusCompleted
	case PaymentProcessing:
		return withdrawal.StatusProcessing
	case PaymentFailed, PaymentCancelled, PaymentRejected, PaymentRefunded:
		return withdrawal.StatusFailed
	default:
		return withdrawal.StatusPending
	}
}

// RechargeStatus collapses a payment status onto the recharge lifecycle.
func RechargeStatus(s PaymentStatus) recharge.Status {
	switch s {
	case PaymentCompleted:
		return recharge.StatusCompleted
	case PaymentCancelled:
		return recharge.StatusCancelled
	case PaymentFailed, PaymentRejected, PaymentRefunded:
		return recharge.StatusFailed
	default:
		return recharge.StatusPending
	}
}
