package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/call"
	"github.com/amirasaad/payminute/pkg/domain/commission"
	"github.com/amirasaad/payminute/pkg/domain/kyc"
	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/domain/recharge"
	"github.com/amirasaad/payminute/pkg/domain/withdrawal"
	"github.com/google/uuid"
)

type accountRepo struct{ v *view }

func (r *accountRepo) Get(_ context.Context, id uuid.UUID) (out *ledger.Account, err error) {
	err = r.v.with("accounts.Get", func(st *state) error {
		a, ok := st.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &a
		return nil
	})
	return
}

func (r *accountRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return r.Get(ctx, id)
}

func (r *accountRepo) Create(_ context.Context, acc *ledger.Account) error {
	return r.v.with("accounts.Create", func(st *state) error {
		if _, ok := st.accounts[acc.UserID]; ok {
			return domain.ErrAlreadyExists
		}
		st.accounts[acc.UserID] = *acc
		return nil
	})
}

func (r *accountRepo) Update(_ context.Context, acc *ledger.Account) error {
	return r.v.with("accounts.Update", func(st *state) error {
		if _, ok := st.accounts[acc.UserID]; !ok {
			return domain.ErrNotFound
		}
		st.accounts[acc.UserID] = *acc
		return nil
	})
}

func (r *accountRepo) List(_ context.Context) (out []*ledger.Account, err error) {
	err = r.v.with("accounts.List", func(st *state) error {
		for _, a := range st.accounts {
			a := a
			out = append(out, &a)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
		return nil
	})
	return
}

type transactionRepo struct{ v *view }

func (r *transactionRepo) Create(_ context.Context, tx *ledger.Transaction) error {
	return r.v.with("transactions.Create", func(st *state) error {
		if _, ok := st.accounts[tx.AccountID]; !ok {
			return domain.ErrNotFound
		}
		st.transactions = append(st.transactions, *tx)
		return nil
	})
}

func (r *transactionRepo) list(op string, match func(ledger.Transaction) bool) (out []*ledger.Transaction, err error) {
	err = r.v.with(op, func(st *state) error {
		for i := len(st.transactions) - 1; i >= 0; i-- {
			if t := st.transactions[i]; match(t) {
				out = append(out, &t)
			}
		}
		return nil
	})
	return
}

func (r *transactionRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*ledger.Transaction, error) {
	return r.list("transactions.ListByAccount", func(t ledger.Transaction) bool { return t.AccountID == accountID })
}

func (r *transactionRepo) ListByCall(_ context.Context, callID uuid.UUID) ([]*ledger.Transaction, error) {
	return r.list("transactions.ListByCall", func(t ledger.Transaction) bool {
		return t.CallID != nil && *t.CallID == callID
	})
}

func (r *transactionRepo) UpdateStatusByWithdrawal(_ context.Context, withdrawalID uuid.UUID, status ledger.Status) error {
	return r.v.with("transactions.UpdateStatusByWithdrawal", func(st *state) error {
		for i, t := range st.transactions {
			if t.Kind == ledger.KindWithdrawal && t.WithdrawalID != nil && *t.WithdrawalID == withdrawalID {
				st.transactions[i].Status = status
			}
		}
		return nil
	})
}

type callRepo struct{ v *view }

func (r *callRepo) Create(_ context.Context, c *call.Call) error {
	return r.v.with("calls.Create", func(st *state) error {
		if _, ok := st.calls[c.RoomID]; ok {
			return domain.ErrAlreadyExists
		}
		st.calls[c.RoomID] = *c
		return nil
	})
}

func (r *callRepo) GetByRoomID(_ context.Context, roomID string) (out *call.Call, err error) {
	err = r.v.with("calls.GetByRoomID", func(st *state) error {
		c, ok := st.calls[roomID]
		if !ok {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return
}

func (r *callRepo) GetByRoomIDForUpdate(ctx context.Context, roomID string) (*call.Call, error) {
	return r.GetByRoomID(ctx, roomID)
}

func (r *callRepo) Update(_ context.Context, c *call.Call) error {
	return r.v.with("calls.Update", func(st *state) error {
		if _, ok := st.calls[c.RoomID]; !ok {
			return domain.ErrNotFound
		}
		st.calls[c.RoomID] = *c
		return nil
	})
}

func (r *callRepo) ListByUser(_ context.Context, userID uuid.UUID) (out []*call.Call, err error) {
	err = r.v.with("calls.ListByUser", func(st *state) error {
		for _, c := range st.calls {
			if c.ViewerID == userID || c.StreamerID == userID {
				c := c
				out = append(out, &c)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
		return nil
	})
	return
}

type rateRepo struct{ v *view }

func (r *rateRepo) Get(_ context.Context, streamerID uuid.UUID) (out *call.Rate, err error) {
	err = r.v.with("rates.Get", func(st *state) error {
		rate, ok := st.rates[streamerID]
		if !ok {
			return domain.ErrNotFound
		}
		out = &rate
		return nil
	})
	return
}

func (r *rateRepo) Upsert(_ context.Context, rate *call.Rate) error {
	return r.v.with("rates.Upsert", func(st *state) error {
		st.rates[rate.StreamerID] = *rate
		return nil
	})
}

type commissionRepo struct{ v *view }

func (r *commissionRepo) Get(_ context.Context, streamerID uuid.UUID) (out *commission.Record, err error) {
	err = r.v.with("commissions.Get", func(st *state) error {
		rec, ok := st.commissions[streamerID]
		if !ok {
			return domain.ErrNotFound
		}
		out = &rec
		return nil
	})
	return
}

func (r *commissionRepo) Create(_ context.Context, rec *commission.Record) error {
	return r.v.with("commissions.Create", func(st *state) error {
		if _, ok := st.commissions[rec.StreamerID]; ok {
			return domain.ErrAlreadyExists
		}
		st.commissions[rec.StreamerID] = *rec
		return nil
	})
}

func (r *commissionRepo) Update(_ context.Context, rec *commission.Record) error {
	return r.v.with("commissions.Update", func(st *state) error {
		if _, ok := st.commissions[rec.StreamerID]; !ok {
			return domain.ErrNotFound
		}
		st.commissions[rec.StreamerID] = *rec
		return nil
	})
}

type withdrawalRepo struct{ v *view }

func (r *withdrawalRepo) Create(_ context.Context, w *withdrawal.Withdrawal) error {
	return r.v.with("withdrawals.Create", func(st *state) error {
		if w.IdempotencyKey != "" {
			for _, existing := range st.withdrawals {
				if existing.StreamerID == w.StreamerID && existing.IdempotencyKey == w.IdempotencyKey {
					return domain.ErrAlreadyExists
				}
			}
		}
		st.withdrawals[w.ID] = *w
		st.wOrder = append(st.wOrder, w.ID)
		return nil
	})
}

func (r *withdrawalRepo) find(op string, match func(withdrawal.Withdrawal) bool) (out *withdrawal.Withdrawal, err error) {
	err = r.v.with(op, func(st *state) error {
		for _, id := range st.wOrder {
			if w := st.withdrawals[id]; match(w) {
				out = &w
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return
}

func (r *withdrawalRepo) Get(_ context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	return r.find("withdrawals.Get", func(w withdrawal.Withdrawal) bool { return w.ID == id })
}

func (r *withdrawalRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	return r.Get(ctx, id)
}

func (r *withdrawalRepo) GetByProviderReference(_ context.Context, ref string) (*withdrawal.Withdrawal, error) {
	return r.find("withdrawals.GetByProviderReference", func(w withdrawal.Withdrawal) bool {
		return ref != "" && w.ProviderReference == ref
	})
}

func (r *withdrawalRepo) GetByIdempotencyKey(_ context.Context, streamerID uuid.UUID, key string) (*withdrawal.Withdrawal, error) {
	return r.find("withdrawals.GetByIdempotencyKey", func(w withdrawal.Withdrawal) bool {
		return key != "" && w.StreamerID == streamerID && w.IdempotencyKey == key
	})
}

func (r *withdrawalRepo) Update(_ context.Context, w *withdrawal.Withdrawal) error {
	return r.v.with("withdrawals.Update", func(st *state) error {
		if _, ok := st.withdrawals[w.ID]; !ok {
			return domain.ErrNotFound
		}
		st.withdrawals[w.ID] = *w
		return nil
	})
}

func (r *withdrawalRepo) CountPendingSince(_ context.Context, streamerID uuid.UUID, since time.Time) (n int64, err error) {
	err = r.v.with("withdrawals.CountPendingSince", func(st *state) error {
		for _, w := range st.withdrawals {
			if w.StreamerID == streamerID && w.Status == withdrawal.StatusPending && !w.RequestedAt.Before(since) {
				n++
			}
		}
		return nil
	})
	return
}

func (r *withdrawalRepo) ListByStreamer(_ context.Context, streamerID uuid.UUID) (out []*withdrawal.Withdrawal, err error) {
	err = r.v.with("withdrawals.ListByStreamer", func(st *state) error {
		for i := len(st.wOrder) - 1; i >= 0; i-- {
			if w := st.withdrawals[st.wOrder[i]]; w.StreamerID == streamerID {
				out = append(out, &w)
			}
		}
		return nil
	})
	return
}

func (r *withdrawalRepo) SumAnticipationFees(_ context.Context, streamerID uuid.UUID) (sum int64, err error) {
	err = r.v.with("withdrawals.SumAnticipationFees", func(st *state) error {
		for _, w := range st.withdrawals {
			if w.StreamerID == streamerID && w.IsAnticipated {
				sum += w.Fee
			}
		}
		return nil
	})
	return
}

type kycRepo struct{ v *view }

func (r *kycRepo) Create(_ context.Context, rec *kyc.Record) error {
	return r.v.with("kyc.Create", func(st *state) error {
		if rec.Status == kyc.StatusPending {
			for _, other := range st.kyc {
				if other.UserID == rec.UserID && other.Status == kyc.StatusPending {
					return domain.ErrAlreadyExists
				}
			}
		}
		st.kyc[rec.ID] = *rec
		st.kycOrder = append(st.kycOrder, rec.ID)
		return nil
	})
}

func (r *kycRepo) Get(_ context.Context, id uuid.UUID) (out *kyc.Record, err error) {
	err = r.v.with("kyc.Get", func(st *state) error {
		rec, ok := st.kyc[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &rec
		return nil
	})
	return
}

func (r *kycRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*kyc.Record, error) {
	return r.Get(ctx, id)
}

func (r *kycRepo) LatestByUser(_ context.Context, userID uuid.UUID) (out *kyc.Record, err error) {
	err = r.v.with("kyc.LatestByUser", func(st *state) error {
		for i := len(st.kycOrder) - 1; i >= 0; i-- {
			if rec := st.kyc[st.kycOrder[i]]; rec.UserID == userID {
				out = &rec
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return
}

func (r *kycRepo) Update(_ context.Context, rec *kyc.Record) error {
	return r.v.with("kyc.Update", func(st *state) error {
		if _, ok := st.kyc[rec.ID]; !ok {
			return domain.ErrNotFound
		}
		st.kyc[rec.ID] = *rec
		return nil
	})
}

func (r *kycRepo) ListExpired(_ context.Context, now time.Time) (out []*kyc.Record, err error) {
	err = r.v.with("kyc.ListExpired", func(st *state) error {
		for _, id := range st.kycOrder {
			rec := st.kyc[id]
			if rec.Status == kyc.StatusApproved && rec.ExpiresAt != nil && rec.ExpiresAt.Before(now) {
				out = append(out, &rec)
			}
		}
		return nil
	})
	return
}

type rechargeRepo struct{ v *view }

func (r *rechargeRepo) Create(_ context.Context, rc *recharge.Recharge) error {
	return r.v.with("recharges.Create", func(st *state) error {
		if _, ok := st.recharges[rc.PreferenceID]; ok {
			return domain.ErrAlreadyExists
		}
		st.recharges[rc.PreferenceID] = *rc
		return nil
	})
}

func (r *rechargeRepo) GetByPreferenceIDForUpdate(_ context.Context, preferenceID string) (out *recharge.Recharge, err error) {
	err = r.v.with("recharges.GetByPreferenceIDForUpdate", func(st *state) error {
		rc, ok := st.recharges[preferenceID]
		if !ok {
			return domain.ErrNotFound
		}
		out = &rc
		return nil
	})
	return
}

func (r *rechargeRepo) Update(_ context.Context, rc *recharge.Recharge) error {
	return r.v.with("recharges.Update", func(st *state) error {
		if _, ok := st.recharges[rc.PreferenceID]; !ok {
			return domain.ErrNotFound
		}
		st.recharges[rc.PreferenceID] = *rc
		return nil
	})
}
