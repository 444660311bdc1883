package grpc

import (
	"context"
	"encoding/json"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"debitgate/internal/model"
	"debitgate/internal/service"
)

// Server receives published events over gRPC and records authorized charges
// through the service. When the bus provider is grpc it plays the role the
// journal worker plays under NATS.
type Server struct {
	svc  service.ChargeService
	srv  *grpc.Server
	addr string
	log  *zap.Logger
}

func NewServer(addr string, svc service.ChargeService, log *zap.Logger) *Server {
	s := &Server{svc: svc, addr: addr, log: log, srv: grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))}
	s.srv.RegisterService(&eventBusServiceDesc, s)
	return s
}

func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.srv.Serve(lis)
}

func (s *Server) Stop(ctx context.Context) error {
	s.srv.GracefulStop()
	return nil
}

func (s *Server) Publish(ctx context.Context, req *EventRequest) (*EventResponse, error) {
	if req.Topic != service.TopicChargesAuthorized {
		s.log.Warn("grpc: ignoring event on unknown topic", zap.String("topic", req.Topic))
		return &EventResponse{Success: true}, nil
	}

	var event model.ChargeEvent
	if err := json.Unmarshal(req.Payload, &event); err != nil {
		return &EventResponse{Success: false, ErrorMessage: "malformed payload"}, nil
	}
	if err := s.svc.RecordCharge(ctx, event); err != nil {
		s.log.Error("grpc: failed to record charge",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return &EventResponse{Success: false, ErrorMessage: err.Error()}, nil
	}
	return &EventResponse{Success: true}, nil
}
