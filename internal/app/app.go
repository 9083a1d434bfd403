// Package app provides application lifecycle management: boot every
// collaborator the payment gateway needs, start the HTTP server and the
// background sweeper/delivery loops, and tear them down in order on signal.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"payment-gateway/internal/bank"
	"payment-gateway/internal/config"
	"payment-gateway/internal/httpapi"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/merchant"
	"payment-gateway/internal/metrics"
	"payment-gateway/internal/notify"
	"payment-gateway/internal/payment"
	"payment-gateway/internal/payment/auditstore"
	"payment-gateway/internal/payment/intentstore"
	"payment-gateway/internal/payment/mirrorstore"
	"payment-gateway/internal/payment/pgstore"
	"payment-gateway/internal/shutdown"
	"payment-gateway/internal/signing"
	"payment-gateway/internal/sweeper"
	"payment-gateway/internal/tracing"
	"payment-gateway/pkg/broker/nats/jetstream"
	"payment-gateway/pkg/broker/rabbitmq"
	"payment-gateway/pkg/server"
)

const mongoIntentCollection = "payment_intents"

// App owns every long-lived collaborator the gateway needs and their
// shutdown order.
type App struct {
	logger *zap.Logger
	cfg    config.Configs

	pg      *pgstore.Store
	mongo   *intentstore.Store
	click   *auditstore.Store
	redis   *redis.Client
	js      *jetstream.JetStream
	mq      *rabbitmq.RabbitMQ
	tracing tracing.Shutdown

	delivery *notify.Delivery
	sweep    *sweeper.Sweeper

	httpServer *server.Server
}

// New wires every collaborator in the order each depends on the last:
// logger -> config -> tracing/metrics -> stores -> merchant directory ->
// bank/notify collaborators -> payment.Service -> HTTP server.
func New() (*App, error) {
	a := &App{}

	logger, err := logging.New(logging.ModeFromEnv())
	if err != nil {
		return nil, fmt.Errorf("app: logger: %w", err)
	}
	a.logger = logger

	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("app: config: %w", err)
	}
	a.cfg = cfg
	logger.Info("configuration loaded", zap.String("mode", cfg.APP.Mode))

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:      cfg.TRACING.Enabled,
		ServiceName:  cfg.TRACING.ServiceName,
		OTLPEndpoint: cfg.TRACING.OTLPEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("app: tracing: %w", err)
	}
	a.tracing = shutdownTracing

	var metricsReg *metrics.Registry
	if cfg.METRICS.Enabled {
		metricsReg = metrics.New(cfg.METRICS.Namespace)
	}

	pg, err := pgstore.Connect(ctx, cfg.POSTGRES.DSN)
	if err != nil {
		return nil, fmt.Errorf("app: postgres: %w", err)
	}
	a.pg = pg
	logger.Info("postgres store connected")

	var store payment.Store = pg

	var intents *intentstore.Store
	if cfg.MONGO.URI != "" {
		intents, err = intentstore.Connect(ctx, cfg.MONGO.URI, cfg.MONGO.Database, mongoIntentCollection)
		if err != nil {
			logger.Warn("intent mirror unavailable, continuing without it", zap.Error(err))
		} else {
			a.mongo = intents
			logger.Info("intent mirror connected")
		}
	}

	var audit *auditstore.Store
	if cfg.CLICKHOUSE.Addr != "" {
		audit, err = auditstore.Connect(cfg.CLICKHOUSE.Addr, cfg.CLICKHOUSE.Database, cfg.CLICKHOUSE.Username, cfg.CLICKHOUSE.Password)
		if err != nil {
			logger.Warn("audit mirror unavailable, continuing without it", zap.Error(err))
		} else {
			a.click = audit
			logger.Info("audit mirror connected")
		}
	}

	if intents != nil || audit != nil {
		store = mirrorstore.New(store, intents, audit)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.REDIS.Addr,
		Password: cfg.REDIS.Password,
		DB:       cfg.REDIS.DB,
	})
	a.redis = redisClient

	pgPool, err := pgxpool.New(ctx, cfg.POSTGRES.DSN)
	if err != nil {
		return nil, fmt.Errorf("app: merchant pgxpool: %w", err)
	}
	merchantSource := merchant.NewPgSource(pgPool)
	merchants := merchant.NewDirectory(redisClient, merchantSource, cfg.REDIS.TTL)
	logger.Info("merchant directory initialized")

	bankClient := bank.New(bank.Config{
		BaseURL: cfg.BANK.BaseURL,
		Timeout: cfg.BANK.Timeout,
	}, metricsReg)

	js, err := jetstream.New(jetstream.Config{
		URL:        cfg.NATS.URL,
		StreamName: cfg.NATS.StreamName,
		Subjects:   []string{notify.OutboxSubject},
		MaxAge:     24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("app: jetstream: %w", err)
	}
	a.js = js
	logger.Info("jetstream connected")

	mq, err := rabbitmq.Connect(cfg.RABBITMQ.URL)
	if err != nil {
		logger.Warn("rabbitmq dead-letter queue unavailable, webhook retries will not be dead-lettered", zap.Error(err))
	} else {
		if err := mq.DeclareQueue(cfg.RABBITMQ.DeadQueue); err != nil {
			logger.Warn("failed to declare dead-letter queue", zap.Error(err))
		}
		a.mq = mq
	}

	signer := signing.NewSigner()

	outbox := notify.NewOutbox(js)
	delivery := notify.NewDelivery(js, signer, merchantSource, mq, metricsReg)
	a.delivery = delivery

	svcOpts := []payment.Option{payment.WithMaxAttempts(cfg.APP.MaxAttempts)}
	if metricsReg != nil {
		svcOpts = append(svcOpts, payment.WithTransitionObserver(metricsReg))
	}
	svc := payment.NewService(store, merchants, signer, bankClient, outbox, payment.NewIDGen(), payment.SystemClock{}, svcOpts...)

	sweep := sweeper.New(store, outbox, payment.SystemClock{}, cfg.APP.SweepInterval)
	a.sweep = sweep

	form := httpapi.NewHostedForm(svc)
	router := httpapi.Router(svc, form, logger, cfg.SERVER.ReadTimeout, metricsReg)
	handler := tracing.WrapHandler("payment-gateway", router)

	httpSrv, err := server.New(server.WithHTTPServer(handler, cfg.APP.Port,
		cfg.SERVER.ReadTimeout, cfg.SERVER.WriteTimeout, cfg.SERVER.IdleTimeout))
	if err != nil {
		return nil, fmt.Errorf("app: http server: %w", err)
	}
	a.httpServer = httpSrv

	return a, nil
}

// RunAPI starts the HTTP server only, blocks until SIGINT/SIGTERM, and
// shuts down in phases via internal/shutdown. Use this for the api binary;
// background reconciliation runs separately in the worker binary so either
// can be scaled independently.
func (a *App) RunAPI() error {
	if err := a.httpServer.Run(a.logger); err != nil {
		return fmt.Errorf("app: start http server: %w", err)
	}
	a.logger.Info("http server started", zap.String("port", a.cfg.APP.Port))

	a.waitForSignal()

	mgr := a.newShutdownManager()
	mgr.RegisterHook(shutdown.PhaseStopAcceptingRequests, "http_server", func(ctx context.Context) error {
		return a.httpServer.Stop(ctx)
	})
	return a.shutdown(mgr)
}

// RunWorker starts the background expiry sweeper and webhook delivery
// consumer, blocks until SIGINT/SIGTERM, and shuts down in phases.
func (a *App) RunWorker() error {
	bgCtx, cancelBG := context.WithCancel(context.Background())
	go a.sweep.Run(bgCtx)
	go func() {
		if err := a.delivery.Run(bgCtx, a.cfg.NATS.StreamName); err != nil {
			a.logger.Error("webhook delivery consumer stopped", zap.Error(err))
		}
	}()
	a.logger.Info("background jobs started")

	a.waitForSignal()
	cancelBG()

	return a.shutdown(a.newShutdownManager())
}

func (a *App) waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
}

// newShutdownManager registers every hook common to both binaries: the
// store/broker connections each owns, plus tracing flush and log sync.
func (a *App) newShutdownManager() *shutdown.Manager {
	mgr := shutdown.NewManager(a.logger)
	mgr.RegisterHook(shutdown.PhaseCleanup, "postgres", func(context.Context) error {
		a.pg.Close()
		return nil
	})
	if a.mongo != nil {
		mgr.RegisterHook(shutdown.PhaseCleanup, "mongo", func(ctx context.Context) error {
			return a.mongo.Close(ctx)
		})
	}
	if a.click != nil {
		mgr.RegisterHook(shutdown.PhaseCleanup, "clickhouse", func(context.Context) error {
			return a.click.Close()
		})
	}
	if a.mq != nil {
		mgr.RegisterHook(shutdown.PhaseCleanup, "rabbitmq", func(context.Context) error {
			return a.mq.Close()
		})
	}
	mgr.RegisterHook(shutdown.PhaseCleanup, "redis", func(context.Context) error {
		return a.redis.Close()
	})
	mgr.RegisterHook(shutdown.PhaseCleanup, "jetstream", func(context.Context) error {
		a.js.Close()
		return nil
	})
	mgr.RegisterHook(shutdown.PhasePostShutdown, "tracing", func(ctx context.Context) error {
		return a.tracing(ctx)
	})
	mgr.RegisterHook(shutdown.PhasePostShutdown, "logger", func(context.Context) error {
		logging.Sync(a.logger)
		return nil
	})
	return mgr
}

func (a *App) shutdown(mgr *shutdown.Manager) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.SERVER.ShutdownTimeout+20*time.Second)
	defer cancel()

	if err := mgr.Shutdown(ctx); err != nil {
		a.logger.Error("graceful shutdown completed with errors", zap.Error(err))
		return err
	}

	a.logger.Info("application stopped gracefully")
	return nil
}
