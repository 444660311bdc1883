package infrastructure

import (
	"context"

	"go.uber.org/zap"

	"debitgate/internal/config"
	"debitgate/internal/repository"
	"debitgate/internal/service"
	transportGRPC "debitgate/internal/transport/grpc"
	transportHTTP "debitgate/internal/transport/http"
	transportNATS "debitgate/internal/transport/nats"
	"debitgate/internal/worker"
)

// Bootstrap initialises all dependencies from config and wires up the
// application. Returns the App, a cleanup function, or an error.
func Bootstrap(ctx context.Context) (*App, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	log, err := newLogger(cfg.Env)
	if err != nil {
		return nil, nil, err
	}

	db, err := connectPostgres(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}

	rdb, err := connectRedis(ctx, cfg.RedisAddr())
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	var cleanupFns []func()
	cleanupFns = append(cleanupFns, func() {
		db.Close()
		_ = rdb.Close()
		_ = log.Sync()
	})

	snapshots := repository.NewPostgresStore(db)
	store := repository.NewBalanceRepo(rdb, snapshots, log)

	var servers []Server

	switch cfg.BusProvider {
	case "nats":
		nc, err := connectNats(cfg.NatsAddr())
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		cleanupFns = append(cleanupFns, nc.Close)

		var svc service.ChargeService = service.NewCharger(store, snapshots, transportNATS.NewBus(nc), log)

		servers = append(servers,
			worker.NewJournalWorker(svc, nc, log),
			transportNATS.NewHandler(svc, nc, log),
			transportHTTP.NewServer(cfg.ApiAddr(), svc, log),
		)

	case "grpc":
		bus, cleanup, err := transportGRPC.NewBusFromAddr(cfg.GRPCAddr())
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		cleanupFns = append(cleanupFns, cleanup)

		var svc service.ChargeService = service.NewCharger(store, snapshots, bus, log)

		// The gRPC server doubles as the journal worker: published events
		// land on Publish and are recorded through the service.
		servers = append(servers,
			transportGRPC.NewServer(cfg.GRPCAddr(), svc, log),
			transportHTTP.NewServer(cfg.ApiAddr(), svc, log),
		)
	}

	log.Info("debitgate bootstrapped",
		zap.String("bus_provider", cfg.BusProvider),
		zap.String("api_addr", cfg.ApiAddr()),
	)

	return NewApp(servers), runCleanup(cleanupFns), nil
}

// runCleanup returns a single function that calls all cleanup functions in
// reverse order.
func runCleanup(fns []func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
