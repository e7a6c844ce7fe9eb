package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/gym-ledger/internal/cfg"
	v1Http "github.com/DRSN-tech/gym-ledger/internal/delivery/v1/http"
	"github.com/DRSN-tech/gym-ledger/internal/infrastructure/kafka"
	"github.com/DRSN-tech/gym-ledger/internal/infrastructure/lock"
	"github.com/DRSN-tech/gym-ledger/internal/infrastructure/metrics"
	"github.com/DRSN-tech/gym-ledger/internal/infrastructure/report"
	s3Repo "github.com/DRSN-tech/gym-ledger/internal/repository/minio"
	"github.com/DRSN-tech/gym-ledger/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/gym-ledger/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/gym-ledger/internal/repository/redis"
	redisConv "github.com/DRSN-tech/gym-ledger/internal/repository/redis/converter"
	"github.com/DRSN-tech/gym-ledger/internal/repository/remote"
	remoteConv "github.com/DRSN-tech/gym-ledger/internal/repository/remote/converter"
	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/clients"
	"github.com/DRSN-tech/gym-ledger/pkg/closer"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/DRSN-tech/gym-ledger/pkg/postgres"
	"github.com/DRSN-tech/gym-ledger/pkg/remotestore"
	"github.com/DRSN-tech/gym-ledger/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
	topicTimeout    = 10 * time.Second
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	worker  *kafka.OutboxWorker
}

// NewApp поднимает зависимости и собирает слои. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: log, closer: closer.NewCloser(0)}
	defer func() {
		if err != nil {
			_ = a.closer.Close(context.Background())
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := initPGDB(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(ctx); err != nil {
		return nil, e.Wrap("failed to connect to redis", err)
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return nil, e.Wrap("failed to initialize minio client", err)
	}
	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.ReportsBucket); err != nil {
		return nil, e.Wrap("failed to initialize MinIO bucket", err)
	}

	producer := kafka.NewProducer(log, cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// Движения копятся в журнале и уйдут, когда брокер станет доступен
		log.Warnf("kafka topic %s is not ready: %v", cfg.Kafka.Topic, err)
	}

	m := metrics.New()
	store := remotestore.NewClient(
		cfg.Remote.BaseURL,
		cfg.Remote.Timeout,
		remotestore.WithToken(cfg.Remote.Token),
		remotestore.WithObserver(m.ObserveRemote),
	)

	productRepo := remote.NewProductRepo(store, remoteConv.NewProductConverter())
	purchaseRepo := remote.NewPurchaseRepo(store, remoteConv.NewPurchaseConverter())
	supplierRepo := remote.NewSupplierRepo(store, remoteConv.NewSupplierConverter())
	clientRepo := remote.NewClientRepo(store, remoteConv.NewClientConverter())

	movConv := pgdbConv.NewMovementConverter()
	journalRepo := pgdb.NewJournalRepo(db.Pool, movConv, pgdbConv.NewReconciliationConverter())
	outboxRepo := pgdb.NewOutboxRepo(db.Pool, movConv)
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewPurchaseConverter(), cfg.Redis, log)
	reportRepo := s3Repo.NewReportRepo(minioClient)

	locker := lock.NewRedisLocker(redisClient.Client, cfg.Ledger, log)
	ledgerUC := usecase.NewLedgerUC(
		productRepo,
		purchaseRepo,
		supplierRepo,
		cacheRepo,
		journalRepo,
		tr.NewManager(db.Pool),
		locker,
		m,
		log,
	)
	catalogUC := usecase.NewCatalogUC(productRepo, purchaseRepo, supplierRepo, clientRepo, locker, log)
	reportUC := usecase.NewReportUC(ledgerUC, report.NewXLSXRenderer(), reportRepo, cfg.Minio.ReportsBucket, log)

	a.worker = kafka.NewOutboxWorker(outboxRepo, log, producer, pgdb.MovementsChannel, db.Dsn)
	a.closer.Add("outbox worker", a.worker.Stop)

	r := chi.NewRouter()
	if err := v1Http.NewRouter(r, log, m).Init(cfg.Http.RateLimit, ledgerUC, catalogUC, reportUC); err != nil {
		return nil, err
	}

	a.httpSrv = v1Http.NewServer(r, cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	return a, nil
}

// Run запускает воркер и HTTP-сервер и ждёт сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.worker.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		errCh <- a.httpSrv.Run()
	}()

	var appErr error
	select {
	case appErr = <-errCh:
		if appErr != nil {
			a.logger.Errorf(appErr, "HTTP server fatal error")
		}
	case <-ctx.Done():
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db, logger)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
