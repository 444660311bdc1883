package service

import (
	"context"

	"debitgate/internal/model"
)

// TopicChargesAuthorized carries one ChargeEvent per authorized debit.
const TopicChargesAuthorized = "charges.authorized"

// ChargeService defines the business operations for the charge API.
// All transport layers (HTTP, NATS, gRPC) depend on this interface, not on
// the concrete implementation.
type ChargeService interface {
	Charge(ctx context.Context, req model.ChargeRequest) (*model.ChargeOutcome, error)
	Reset(ctx context.Context, account string) error
	Balance(ctx context.Context, account string) (*model.AccountBalance, error)
	RecordCharge(ctx context.Context, event model.ChargeEvent) error
}

// BalanceStore is the atomic per-key balance primitive the service builds on.
// Implemented by repository.BalanceRepo.
type BalanceStore interface {
	TryDebit(ctx context.Context, key string, amountCents int64) (*model.DebitResult, error)
	Reset(ctx context.Context, key string, cents int64) error
	Balance(ctx context.Context, key string) (int64, error)
}

// Journal persists authorized charges durably.
type Journal interface {
	InsertCharge(ctx context.Context, event model.ChargeEvent) error
}

// EventBus publishes charge events to interested consumers.
type EventBus interface {
	Publish(topic string, data []byte) error
}
