// Package billing opens call rooms and settles them per minute between the
// viewer and the streamer.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/call"
	"github.com/amirasaad/payminute/pkg/domain/events"
	domainledger "github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/amirasaad/payminute/pkg/repository"
	"github.com/amirasaad/payminute/pkg/service/commission"
	"github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement is the outcome of finalizing a call.
type Settlement struct {
	CallID          uuid.UUID
	RoomID          string
	DurationMinutes int64
	TotalCost       int64
	StreamerEarning int64
	PlatformFee     int64
	CommissionRate  decimal.Decimal
	Billed          bool
}

// Service is the call billing engine.
type Service struct {
	uow        repository.UnitOfWork
	ledger     *ledger.Service
	commission *commission.Service
	bus        eventbus.Bus
	cfg        *config.Billing
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new billing Service.
func NewService(deps config.Deps, opts ...Option) *Service {
	s := &Service{
		uow:    deps.Uow,
		bus:    deps.EventBus,
		cfg:    deps.Config.Billing,
		logger: deps.Logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = ledger.NewService(deps, ledger.WithClock(s.now))
	s.commission = commission.NewService(deps, commission.WithClock(s.now))
	return s
}

// SetRate sets the streamer's price per minute within the configured bounds.
func (s *Service) SetRate(ctx context.Context, streamerID uuid.UUID, pricePerMinute int64) (*call.Rate, error) {
	logger := s.logger.With("streamer_id", streamerID, "price_per_minute", pricePerMinute)
	rate, err := call.NewRate(streamerID, pricePerMinute, s.cfg.MinPricePerMinute, s.cfg.MaxPricePerMinute, s.now())
	if err != nil {
		logger.Error("SetRate failed", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.RateRepository()
		if err != nil {
			return err
		}
		return repo.Upsert(ctx, rate)
	})
	if err != nil {
		logger.Error("SetRate failed", "error", err)
		return nil, err
	}
	logger.Info("SetRate successful")
	return rate, nil
}

// GetRate returns the streamer's current price, falling back to the default.
func (s *Service) GetRate(ctx context.Context, streamerID uuid.UUID) (int64, error) {
	repo, err := s.uow.RateRepository()
	if err != nil {
		return 0, err
	}
	return s.priceOf(ctx, repo, streamerID, s.cfg.DefaultPrice)
}

func (s *Service) priceOf(ctx context.Context, repo repository.RateRepository, streamerID uuid.UUID, fallback int64) (int64, error) {
	rate, err := repo.Get(ctx, streamerID)
	if errors.Is(err, domain.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	return rate.PricePerMinute, nil
}

// OpenCall creates an active call room between a viewer and a streamer. The
// viewer must hold at least one minute of balance.
func (s *Service) OpenCall(ctx context.Context, req dto.OpenCallRequest) (c *call.Call, err error) {
	logger := s.logger.With("viewer_id", req.ViewerID, "streamer_id", req.StreamerID, "room_id", req.RoomID)
	logger.Info("OpenCall started")
	if err := dto.Validate(req); err != nil {
		logger.Error("OpenCall failed: invalid request", "error", err)
		return nil, err
	}
	roomID := req.RoomID
	if roomID == "" {
		roomID = "room_" + uuid.NewString()
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if req.ViewerID == req.StreamerID {
			return domain.ErrSameParticipant
		}
		viewer, err := s.ledger.Ensure(ctx, uow, req.ViewerID, domainledger.RoleViewer)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Ensure(ctx, uow, req.StreamerID, domainledger.RoleStreamer); err != nil {
			return err
		}
		rates, err := uow.RateRepository()
		if err != nil {
			return err
		}
		price, err := s.priceOf(ctx, rates, req.StreamerID, s.cfg.DefaultPrice)
		if err != nil {
			return err
		}
		if !viewer.CanAfford(price) {
			return domain.ErrInsufficientFunds
		}
		c, err = call.Open(roomID, req.ViewerID, req.StreamerID, price, s.now())
		if err != nil {
			return err
		}
		calls, err := uow.CallRepository()
		if err != nil {
			return err
		}
		if err := calls.Create(ctx, c); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.ErrRoomAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Error("OpenCall failed", "error", err)
		return nil, err
	}
	logger.Info("OpenCall successful", "room_id", c.RoomID, "price_per_minute", c.PricePerMinute)
	return c, nil
}

func (s *Service) rateFor(ctx context.Context, uow repository.UnitOfWork, streamerID uuid.UUID) (decimal.Decimal, error) {
	if !s.cfg.UseCommissionRecords {
		return s.cfg.DefaultCommission, nil
	}
	return s.commission.EffectiveRate(ctx, uow, streamerID)
}

// FinalizeCall settles a call room for the given number of minutes.
//
// A viewer who cannot cover the full cost is not charged at all: the call is
// completed unbilled and no transaction is written. Finalizing an already
// completed or cancelled room fails with ErrAlreadyFinalized.
func (s *Service) FinalizeCall(ctx context.Context, roomID string, durationMinutes int64) (st *Settlement, err error) {
	logger := s.logger.With("room_id", roomID, "duration_minutes", durationMinutes)
	logger.Info("FinalizeCall started")
	if roomID == "" || durationMinutes < 0 {
		logger.Error("FinalizeCall failed: invalid input")
		return nil, domain.ErrValidation
	}

	var c *call.Call
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		calls, err := uow.CallRepository()
		if err != nil {
			return err
		}
		c, err = calls.GetByRoomIDForUpdate(ctx, roomID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrRoomNotFound
			}
			return err
		}
		if c.Status.IsFinal() {
			return domain.ErrAlreadyFinalized
		}

		rates, err := uow.RateRepository()
		if err != nil {
			return err
		}
		price, err := s.priceOf(ctx, rates, c.StreamerID, c.PricePerMinute)
		if err != nil {
			return err
		}
		rate, err := s.rateFor(ctx, uow, c.StreamerID)
		if err != nil {
			return err
		}
		charge, err := call.ComputeCharge(price, durationMinutes, rate)
		if err != nil {
			return err
		}

		accounts, err := s.ledger.Lock(ctx, uow, c.ViewerID, c.StreamerID)
		if err != nil {
			return err
		}
		now := s.now()
		if charge.TotalCost == 0 || !accounts[c.ViewerID].CanAfford(charge.TotalCost) {
			logger.Warn("call completed unbilled", "total_cost", charge.TotalCost, "viewer_balance", accounts[c.ViewerID].Balance)
			if err := c.CompleteUnbilled(durationMinutes, now); err != nil {
				return err
			}
			return calls.Update(ctx, c)
		}

		if err := c.Complete(durationMinutes, charge, rate, now); err != nil {
			return err
		}
		desc := fmt.Sprintf("call %s: %d min at %d", roomID, durationMinutes, price)
		debit := domainledger.NewEntry(c.ViewerID, domainledger.KindCallCharge, charge.TotalCost, desc)
		debit.CallID = &c.ID
		if _, err := s.ledger.Post(ctx, uow, debit); err != nil {
			return err
		}
		// Entries must be positive. config.Validate keeps the price floor high
		// enough that a billed minute always earns something.
		if charge.StreamerEarning > 0 {
			credit := domainledger.NewEntry(c.StreamerID, domainledger.KindCallEarning, charge.StreamerEarning, desc)
			credit.CallID = &c.ID
			if _, err := s.ledger.Post(ctx, uow, credit); err != nil {
				return err
			}
		}
		return calls.Update(ctx, c)
	})
	if err != nil {
		logger.Error("FinalizeCall failed", "error", err)
		return nil, err
	}

	st = &Settlement{
		CallID:          c.ID,
		RoomID:          c.RoomID,
		DurationMinutes: c.DurationMinutes,
		TotalCost:       c.TotalCost,
		StreamerEarning: c.StreamerEarning,
		PlatformFee:     c.PlatformFee,
		CommissionRate:  c.CommissionRate,
		Billed:          c.Billed,
	}
	eventbus.EmitAfterCommit(ctx, s.bus, s.logger, &events.CallFinalized{
		CallID:          c.ID,
		RoomID:          c.RoomID,
		ViewerID:        c.ViewerID,
		StreamerID:      c.StreamerID,
		DurationMinutes: c.DurationMinutes,
		TotalCost:       c.TotalCost,
		StreamerEarning: c.StreamerEarning,
		Billed:          c.Billed,
		Timestamp:       s.now(),
	})
	logger.Info("FinalizeCall successful", "total_cost", st.TotalCost, "streamer_earning", st.StreamerEarning, "billed", st.Billed)
	return st, nil
}

// CancelCall closes an active room without billing anyone.
func (s *Service) CancelCall(ctx context.Context, roomID string) (c *call.Call, err error) {
	logger := s.logger.With("room_id", roomID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		calls, err := uow.CallRepository()
		if err != nil {
			return err
		}
		c, err = calls.GetByRoomIDForUpdate(ctx, roomID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrRoomNotFound
			}
			return err
		}
		if err := c.Cancel(s.now()); err != nil {
			return err
		}
		return calls.Update(ctx, c)
	})
	if err != nil {
		logger.Error("CancelCall failed", "error", err)
		return nil, err
	}
	logger.Info("CancelCall successful")
	return c, nil
}

// GetCall returns a call by room id.
func (s *Service) GetCall(ctx context.Context, roomID string) (*call.Call, error) {
	calls, err := s.uow.CallRepository()
	if err != nil {
		return nil, err
	}
	c, err := calls.GetByRoomID(ctx, roomID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrRoomNotFound
	}
	return c, err
}

// History lists the calls where the user was either viewer or streamer, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]*call.Call, error) {
	calls, err := s.uow.CallRepository()
	if err != nil {
		return nil, err
	}
	return calls.ListByUser(ctx, userID)
}
