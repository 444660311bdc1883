package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Bus publishes events to a remote EventBus server over gRPC.
// Used when the bus provider is "grpc".
type Bus struct {
	conn *grpc.ClientConn
}

// NewBusFromAddr dials the remote EventBus and returns the Bus and a cleanup
// function.
func NewBusFromAddr(addr string) (*Bus, func(), error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = conn.Close() }
	return &Bus{conn: conn}, cleanup, nil
}

func (b *Bus) Publish(topic string, data []byte) error {
	out := new(EventResponse)
	err := b.conn.Invoke(context.Background(), publishMethod, &EventRequest{Topic: topic, Payload: data}, out)
	if err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("event bus rejected publish: %s", out.ErrorMessage)
	}
	return nil
}
