package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"debitgate/internal/model"
)

type mockService struct {
	recorded  []model.ChargeEvent
	recordErr error
}

func (m *mockService) Charge(ctx context.Context, req model.ChargeRequest) (*model.ChargeOutcome, error) {
	return nil, nil
}
func (m *mockService) Reset(ctx context.Context, account string) error { return nil }
func (m *mockService) Balance(ctx context.Context, account string) (*model.AccountBalance, error) {
	return nil, nil
}
func (m *mockService) RecordCharge(ctx context.Context, event model.ChargeEvent) error {
	m.recorded = append(m.recorded, event)
	return m.recordErr
}

func TestProcessJournalsEvent(t *testing.T) {
	svc := &mockService{}
	w := &JournalWorker{svc: svc, log: zap.NewNop()}

	event := model.ChargeEvent{EventID: "e1", Account: "alice", AmountCents: 3000}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	w.process(context.Background(), payload)

	require.Len(t, svc.recorded, 1)
	assert.Equal(t, "e1", svc.recorded[0].EventID)
}

func TestProcessSkipsMalformedEvent(t *testing.T) {
	svc := &mockService{}
	w := &JournalWorker{svc: svc, log: zap.NewNop()}

	w.process(context.Background(), []byte("not json"))

	assert.Empty(t, svc.recorded)
}

func TestProcessToleratesJournalFailure(t *testing.T) {
	svc := &mockService{recordErr: errors.New("db down")}
	w := &JournalWorker{svc: svc, log: zap.NewNop()}

	payload, _ := json.Marshal(model.ChargeEvent{EventID: "e1"})
	w.process(context.Background(), payload)

	assert.Len(t, svc.recorded, 1)
}
