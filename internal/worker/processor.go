package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"debitgate/internal/model"
	"debitgate/internal/service"
)

// JournalWorker listens on the charges.authorized topic and syncs authorized
// debits into the Postgres charge journal.
type JournalWorker struct {
	svc      service.ChargeService
	natsConn *nats.Conn
	log      *zap.Logger
}

func NewJournalWorker(svc service.ChargeService, nc *nats.Conn, log *zap.Logger) *JournalWorker {
	return &JournalWorker{svc: svc, natsConn: nc, log: log}
}

// Run subscribes to the topic and blocks until ctx is cancelled.
func (w *JournalWorker) Run(ctx context.Context) error {
	// QueueSubscribe: with several API replicas running, each event is
	// delivered to exactly one worker in the group.
	sub, err := w.natsConn.QueueSubscribe(service.TopicChargesAuthorized, "debitgate_journal", func(m *nats.Msg) {
		w.process(ctx, m.Data)
	})
	if err != nil {
		return fmt.Errorf("worker: failed to subscribe: %w", err)
	}

	w.log.Info("journal worker is running")

	<-ctx.Done()

	w.log.Info("journal worker shutting down, draining subscription")
	return sub.Drain()
}

func (w *JournalWorker) process(ctx context.Context, data []byte) {
	var event model.ChargeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.log.Error("worker: failed to unmarshal charge event", zap.Error(err))
		return
	}

	if err := w.svc.RecordCharge(ctx, event); err != nil {
		w.log.Error("worker: failed to journal charge",
			zap.String("account", event.Account),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return
	}

	w.log.Info("worker: charge journaled",
		zap.String("account", event.Account),
		zap.String("event_id", event.EventID),
	)
}

// Start implements the infrastructure.Server interface.
func (w *JournalWorker) Start(ctx context.Context) error {
	return w.Run(ctx)
}

// Stop implements the infrastructure.Server interface (shutdown is via ctx).
func (w *JournalWorker) Stop(ctx context.Context) error {
	return nil
}
