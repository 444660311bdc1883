package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"debitgate/internal/errs"
	"debitgate/internal/metrics"
	"debitgate/internal/model"
)

const (
	// DefaultAccount is the sentinel account used when a request omits one.
	DefaultAccount = "account"

	// DefaultBalanceCents is the balance an account is (re)initialized to.
	DefaultBalanceCents int64 = 100_00

	// DefaultChargeCents is debited when a request omits the amount.
	DefaultChargeCents int64 = 10_00
)

// Charger implements ChargeService: input validation, defaulting, key
// derivation and outcome shaping around the atomic balance store. It holds
// no state of its own; every request resolves independently against the
// store.
type Charger struct {
	store   BalanceStore
	journal Journal
	bus     EventBus
	log     *zap.Logger
}

func NewCharger(store BalanceStore, journal Journal, bus EventBus, log *zap.Logger) *Charger {
	return &Charger{store: store, journal: journal, bus: bus, log: log}
}

// balanceKey namespaces an account id into a store key. The prefix keeps the
// mapping injective: distinct accounts can never collide.
func balanceKey(account string) string {
	return "balance:" + account
}

func (c *Charger) Charge(ctx context.Context, req model.ChargeRequest) (*model.ChargeOutcome, error) {
	account := DefaultAccount
	if req.Account != nil {
		account = *req.Account
	}
	amount := model.AmountFromCents(DefaultChargeCents)
	if req.Charges != nil {
		amount = *req.Charges
	}

	if account == "" {
		return nil, fmt.Errorf("%w: account must not be empty", errs.ErrInvalidArgument)
	}
	cents, exact := amount.Cents()
	if !exact {
		return nil, fmt.Errorf("%w: amount %s has more than two decimal places", errs.ErrInvalidArgument, amount)
	}
	if cents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", errs.ErrInvalidArgument, amount)
	}

	res, err := c.store.TryDebit(ctx, balanceKey(account), cents)
	if err != nil {
		metrics.ChargesFailed.WithLabelValues(errs.Kind(err)).Inc()
		return nil, err
	}

	if res.Authorized {
		metrics.ChargesAuthorized.Inc()
		c.publishCharge(account, res)
	} else {
		metrics.ChargesDeclined.Inc()
	}

	c.log.Info("charge attempted",
		zap.String("account", account),
		zap.Bool("authorized", res.Authorized),
		zap.Int64("amount_cents", cents),
		zap.Int64("remaining_cents", res.RemainingCents),
	)
	return res.Outcome(), nil
}

func (c *Charger) Reset(ctx context.Context, account string) error {
	if account == "" {
		account = DefaultAccount
	}
	if err := c.store.Reset(ctx, balanceKey(account), DefaultBalanceCents); err != nil {
		return err
	}
	metrics.Resets.Inc()
	c.log.Info("account reset", zap.String("account", account))
	return nil
}

func (c *Charger) Balance(ctx context.Context, account string) (*model.AccountBalance, error) {
	if account == "" {
		return nil, fmt.Errorf("%w: account must not be empty", errs.ErrInvalidArgument)
	}
	cents, err := c.store.Balance(ctx, balanceKey(account))
	if err != nil {
		return nil, err
	}
	return &model.AccountBalance{Account: account, Balance: model.AmountFromCents(cents)}, nil
}

// RecordCharge journals a charge event delivered over the bus. Safe to call
// more than once per event: the journal deduplicates on event id.
func (c *Charger) RecordCharge(ctx context.Context, event model.ChargeEvent) error {
	return c.journal.InsertCharge(ctx, event)
}

// publishCharge emits the event for an authorized debit. Publishing is
// best-effort: the debit is already committed, so a bus failure must not
// fail the request.
func (c *Charger) publishCharge(account string, res *model.DebitResult) {
	event := model.ChargeEvent{
		EventID:        uuid.NewString(),
		Account:        account,
		AmountCents:    res.ChargedCents,
		InitialCents:   res.InitialCents,
		RemainingCents: res.RemainingCents,
		CreatedAt:      time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		c.log.Error("failed to marshal charge event", zap.Error(err))
		return
	}
	if err := c.bus.Publish(TopicChargesAuthorized, data); err != nil {
		c.log.Error("failed to publish charge event",
			zap.String("account", account),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}
