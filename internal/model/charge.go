package model

import "time"

// ChargeRequest is the inbound shape of a charge attempt. Pointer fields
// distinguish an omitted value (defaulted by the service) from an explicit
// empty or zero value (rejected by validation).
type ChargeRequest struct {
	Account *string `json:"account"`
	Charges *Amount `json:"charges"`
}

type ResetRequest struct {
	Account *string `json:"account"`
}

// ChargeOutcome reports the result of a single debit attempt. For a declined
// attempt RemainingBalance equals InitialBalance and Charges is zero.
type ChargeOutcome struct {
	IsAuthorized     bool   `json:"isAuthorized"`
	InitialBalance   Amount `json:"initialBalance"`
	RemainingBalance Amount `json:"remainingBalance"`
	Charges          Amount `json:"charges"`
}

// DebitResult is the store-level outcome of one atomic debit, in cents.
type DebitResult struct {
	Authorized     bool
	InitialCents   int64
	RemainingCents int64
	ChargedCents   int64
}

func (r *DebitResult) Outcome() *ChargeOutcome {
	return &ChargeOutcome{
		IsAuthorized:     r.Authorized,
		InitialBalance:   AmountFromCents(r.InitialCents),
		RemainingBalance: AmountFromCents(r.RemainingCents),
		Charges:          AmountFromCents(r.ChargedCents),
	}
}

type AccountBalance struct {
	Account string `json:"account"`
	Balance Amount `json:"balance"`
}

// ChargeEvent is published on the bus for every authorized debit and
// journaled to Postgres by the worker. EventID is the idempotency key.
type ChargeEvent struct {
	EventID        string    `json:"event_id"`
	Account        string    `json:"account"`
	AmountCents    int64     `json:"amount_cents"`
	InitialCents   int64     `json:"initial_cents"`
	RemainingCents int64     `json:"remaining_cents"`
	CreatedAt      time.Time `json:"created_at"`
}
