package app

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/amirasaad/payminute/pkg/metrics"
)

// setupEventBus registers the audit and metrics subscribers. Money never
// moves in a subscriber; balances are settled inside the emitting unit of work.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger.With("component", "audit")

	bus.Register(events.EventTypeCallFinalized, HandleCallFinalized(logger))
	bus.Register(events.EventTypeWithdrawalRequested, HandleWithdrawalRequested(logger))
	bus.Register(events.EventTypeWithdrawalStatusChanged, HandleWithdrawalStatusChanged(logger))
	bus.Register(events.EventTypeRechargeCompleted, HandleRechargeCompleted(logger))
	bus.Register(events.EventTypeKYCReviewed, HandleKYCReviewed(logger))
}

// HandleCallFinalized records the settlement of a call room.
func HandleCallFinalized(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		evt, ok := e.(*events.CallFinalized)
		if !ok {
			logger.Error("unexpected event", "type", e.Type())
			return nil
		}
		metrics.CallsFinalized.WithLabelValues(strconv.FormatBool(evt.Billed)).Inc()
		if evt.Billed {
			metrics.CallRevenue.WithLabelValues("streamer").Add(float64(evt.StreamerEarning))
			metrics.CallRevenue.WithLabelValues("platform").Add(float64(evt.TotalCost - evt.StreamerEarning))
		}
		logger.Info("call finalized",
			"room_id", evt.RoomID,
			"viewer_id", evt.ViewerID,
			"streamer_id", evt.StreamerID,
			"duration_minutes", evt.DurationMinutes,
			"total_cost", evt.TotalCost,
			"billed", evt.Billed,
		)
		return nil
	}
}

func HandleWithdrawalRequested(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		evt, ok := e.(*events.WithdrawalRequested)
		if !ok {
			logger.Error("unexpected event", "type", e.Type())
			return nil
		}
		metrics.WithdrawalsRequested.WithLabelValues(strconv.FormatBool(evt.Anticipated)).Inc()
		logger.Info("withdrawal requested",
			"withdrawal_id", evt.WithdrawalID,
			"streamer_id", evt.StreamerID,
			"amount", evt.Amount,
			"fee", evt.Fee,
		)
		return nil
	}
}

func HandleWithdrawalStatusChanged(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		evt, ok := e.(*events.WithdrawalStatusChanged)
		if !ok {
			logger.Error("unexpected event", "type", e.Type())
			return nil
		}
		metrics.WithdrawalTransitions.WithLabelValues(evt.From, evt.To).Inc()
		attrs := []any{"withdrawal_id", evt.WithdrawalID, "from", evt.From, "to", evt.To}
		if evt.FailureReason != "" {
			attrs = append(attrs, "reason", evt.FailureReason, "refunded", evt.Refunded)
			logger.Warn("withdrawal failed", attrs...)
			return nil
		}
		logger.Info("withdrawal status changed", attrs...)
		return nil
	}
}

func HandleRechargeCompleted(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		evt, ok := e.(*events.RechargeCompleted)
		if !ok {
			logger.Error("unexpected event", "type", e.Type())
			return nil
		}
		metrics.RechargesCompleted.Inc()
		logger.Info("recharge completed", "recharge_id", evt.RechargeID, "user_id", evt.UserID, "amount", evt.Amount)
		return nil
	}
}

func HandleKYCReviewed(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		evt, ok := e.(*events.KYCReviewed)
		if !ok {
			logger.Error("unexpected event", "type", e.Type())
			return nil
		}
		metrics.KYCReviews.WithLabelValues(evt.Status).Inc()
		logger.Info("kyc reviewed", "kyc_id", evt.KYCID, "user_id", evt.UserID, "status", evt.Status, "reviewed_by", evt.ReviewedBy)
		return nil
	}
}
