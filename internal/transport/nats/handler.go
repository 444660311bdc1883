package nats

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"debitgate/internal/model"
	"debitgate/internal/service"
)

// Handler subscribes to NATS command topics and delegates to the charge
// service, so balances can be driven over the bus as well as over HTTP.
type Handler struct {
	svc  service.ChargeService
	nc   *nats.Conn
	log  *zap.Logger
	subs []*nats.Subscription
}

func NewHandler(svc service.ChargeService, nc *nats.Conn, log *zap.Logger) *Handler {
	return &Handler{svc: svc, nc: nc, log: log}
}

// Start subscribes to command topics and blocks until ctx is cancelled.
func (h *Handler) Start(ctx context.Context) error {
	s1, err := h.nc.QueueSubscribe("commands.charge", "debitgate_commands", func(m *nats.Msg) {
		var req model.ChargeRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			h.log.Error("nats: failed to unmarshal charge command", zap.Error(err))
			return
		}
		if _, err := h.svc.Charge(ctx, req); err != nil {
			h.log.Error("nats: charge failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, s1)

	s2, err := h.nc.QueueSubscribe("commands.reset", "debitgate_commands", func(m *nats.Msg) {
		var req model.ResetRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			h.log.Error("nats: failed to unmarshal reset command", zap.Error(err))
			return
		}
		account := ""
		if req.Account != nil {
			account = *req.Account
		}
		if err := h.svc.Reset(ctx, account); err != nil {
			h.log.Error("nats: reset failed", zap.String("account", account), zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, s2)

	h.log.Info("NATS command handler is running")

	<-ctx.Done()
	h.log.Info("NATS command handler shutting down, draining subscriptions")

	for _, s := range h.subs {
		_ = s.Drain()
	}
	return nil
}

func (h *Handler) Stop(ctx context.Context) error {
	for _, s := range h.subs {
		_ = s.Unsubscribe()
	}
	return nil
}
