package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	attachadapters "ayuda/internal/attachments/adapters"
	"ayuda/internal/attachments/blob"
	attachhandler "ayuda/internal/attachments/handler"
	attachservice "ayuda/internal/attachments/service"
	attachstore "ayuda/internal/attachments/store"
	caseadapters "ayuda/internal/casework/adapters"
	casehandler "ayuda/internal/casework/handler"
	casemetrics "ayuda/internal/casework/metrics"
	"ayuda/internal/casework/ports"
	caseservice "ayuda/internal/casework/service"
	casestore "ayuda/internal/casework/store"
	httpapi "ayuda/internal/http"
	invhandler "ayuda/internal/inventory/handler"
	invmetrics "ayuda/internal/inventory/metrics"
	invservice "ayuda/internal/inventory/service"
	invstore "ayuda/internal/inventory/store"
	jwttoken "ayuda/internal/jwt_token"
	"ayuda/internal/platform/config"
	"ayuda/internal/platform/httpserver"
	"ayuda/internal/platform/kafka"
	"ayuda/internal/platform/logger"
	"ayuda/internal/platform/metrics"
	"ayuda/internal/platform/postgres"
	"ayuda/internal/platform/redis"
	refmodels "ayuda/internal/reference/models"
	refservice "ayuda/internal/reference/service"
	refstore "ayuda/internal/reference/store"
	id "ayuda/pkg/domain"
	audit "ayuda/pkg/platform/audit"
	"ayuda/pkg/platform/audit/publisher"
	auditmemory "ayuda/pkg/platform/audit/store/memory"
	auditpostgres "ayuda/pkg/platform/audit/store/postgres"
	"ayuda/pkg/platform/audit/worker"
)

const (
	shutdownTimeout = 15 * time.Second
	requestTimeout  = 30 * time.Second
	tokenIssuer     = "ayuda"
	tokenAudience   = "ayuda-api"
)

// Collectors register with the default registry once per process.
var (
	httpMetrics   = metrics.New()
	caseMetrics   = casemetrics.New()
	ledgerMetrics = invmetrics.New()
)

// main wires high-level dependencies and owns the process lifecycle.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("ayuda stopped", "error", err)
		os.Exit(1)
	}
}

// stores groups the backends selected by configuration.
type stores struct {
	db          *sql.DB
	reference   refstore.Store
	cases       caseservice.Store
	ledger      invservice.Store
	attachments attachservice.Store
	audit       audit.Store
	caseTx      caseservice.StoreTx
	ledgerTx    invservice.StoreTx
}

// app is the assembled process: services behind the public router.
type app struct {
	router    http.Handler
	cases     *caseservice.Service
	ledger    *invservice.Ledger
	documents *attachservice.Service
	publisher *publisher.Publisher
}

func newApp(cfg config.Server, log *slog.Logger, st *stores, locker ports.Locker, objects blob.Store, checks map[string]httpapi.HealthCheck) (*app, error) {
	auditPublisher := publisher.NewPublisher(st.audit, publisher.WithLogger(log))
	reference := refservice.New(st.reference, refservice.WithLogger(log))

	ledgerOpts := []invservice.Option{
		invservice.WithLogger(log),
		invservice.WithAuditPublisher(auditPublisher),
		invservice.WithMetrics(ledgerMetrics),
	}
	if st.ledgerTx != nil {
		ledgerOpts = append(ledgerOpts, invservice.WithTx(st.ledgerTx))
	}
	ledger := invservice.New(st.ledger, ledgerOpts...)

	ledgerAdapter := caseadapters.NewLedgerAdapter(ledger)
	referenceAdapter := caseadapters.NewReferenceAdapter(reference, ledgerAdapter)

	caseOpts := []caseservice.Option{
		caseservice.WithLogger(log),
		caseservice.WithAuditPublisher(auditPublisher),
		caseservice.WithMetrics(caseMetrics),
		caseservice.WithStockPolicy(caseservice.StockPolicy(cfg.StockPolicy)),
	}
	if st.caseTx != nil {
		caseOpts = append(caseOpts, caseservice.WithTx(st.caseTx))
	}
	if locker != nil {
		caseOpts = append(caseOpts, caseservice.WithLocker(locker))
	}
	cases, err := caseservice.New(st.cases, referenceAdapter, referenceAdapter, referenceAdapter, ledgerAdapter, caseOpts...)
	if err != nil {
		return nil, err
	}

	documents, err := attachservice.New(st.attachments, objects, attachadapters.NewCaseAdapter(cases), reference,
		attachservice.WithLogger(log),
		attachservice.WithAuditPublisher(auditPublisher),
		attachservice.WithURLExpiry(cfg.Attachments.URLExpiry),
	)
	if err != nil {
		return nil, err
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, tokenIssuer, tokenAudience)
	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        httpMetrics,
		Tokens:         tokens,
		RequestTimeout: requestTimeout,
		Modules: []httpapi.Module{
			casehandler.New(cases, log),
			invhandler.New(ledger, reference, log),
			attachhandler.New(documents, log),
		},
		Checks: checks,
	})
	return &app{
		router:    router,
		cases:     cases,
		ledger:    ledger,
		documents: documents,
		publisher: auditPublisher,
	}, nil
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	checks := map[string]httpapi.HealthCheck{}
	if st.db != nil {
		defer st.db.Close()
		checks["postgres"] = st.db.PingContext
	}

	var locker ports.Locker
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
		locker = redis.NewLocker(redisClient, cfg.Redis.LockTTL)
		log.Info("case creation locks enabled", "backend", "redis")
	}

	objects, err := openBlobStore(ctx, cfg.Attachments, log)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log, st, locker, objects, checks)
	if err != nil {
		return err
	}
	defer a.publisher.Close()

	relay, closeRelay, err := openRelay(ctx, cfg.Kafka, st.audit, log)
	if err != nil {
		return err
	}
	defer closeRelay()

	srv := httpserver.New(cfg.Addr, a.router, requestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting ayuda", "addr", cfg.Addr, "stock_policy", string(cfg.StockPolicy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("AYUDA_DATABASE_URL not set, using in-memory stores")
		ref := refstore.NewInMemoryStore()
		seedDevOperator(ref, log)
		return &stores{
			reference:   ref,
			cases:       casestore.NewInMemoryStore(),
			ledger:      invstore.NewInMemoryStore(),
			attachments: attachstore.NewInMemoryStore(),
			audit:       auditmemory.NewInMemoryStore(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return postgresStores(db, cfg.TxTimeout), nil
}

func postgresStores(db *sql.DB, txTimeout time.Duration) *stores {
	caseStore := casestore.NewPostgres(db)
	ledgerStore := invstore.NewPostgres(db)
	runner := postgres.NewTxRunner(db, txTimeout)
	return &stores{
		db:          db,
		reference:   refstore.NewPostgres(db),
		cases:       caseStore,
		ledger:      ledgerStore,
		attachments: attachstore.NewPostgres(db),
		audit:       auditpostgres.New(db),
		caseTx:      newCaseworkPostgresTx(runner, caseStore),
		ledgerTx:    newInventoryPostgresTx(runner, ledgerStore),
	}
}

func openBlobStore(ctx context.Context, cfg config.AttachmentConfig, log *slog.Logger) (blob.Store, error) {
	if cfg.Bucket == "" {
		log.Warn("AYUDA_S3_BUCKET not set, keeping attachments in memory")
		return blob.NewMemoryStore(), nil
	}
	return blob.NewS3Store(ctx, blob.S3Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		PathStyle: cfg.PathStyle,
	})
}

// openRelay starts nothing when the audit store has no outbox or no brokers
// are configured.
func openRelay(ctx context.Context, cfg config.KafkaConfig, store audit.Store, log *slog.Logger) (*worker.Relay, func(), error) {
	outbox, ok := store.(*auditpostgres.Store)
	if !ok || len(cfg.Brokers) == 0 {
		return nil, func() {}, nil
	}
	client, err := kafka.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, client, cfg.AuditTopic); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("audit outbox relay enabled", "topic", cfg.AuditTopic, "brokers", len(cfg.Brokers))
	relay := worker.NewRelay(outbox, client, cfg.AuditTopic,
		worker.WithPollInterval(cfg.PollInterval),
		worker.WithLogger(log),
	)
	return relay, client.Close, nil
}

// seedDevOperator grants every capability to AYUDA_DEV_OPERATOR_ID so an
// in-memory instance can be driven end to end.
func seedDevOperator(ref *refstore.InMemoryStore, log *slog.Logger) {
	raw := os.Getenv("AYUDA_DEV_OPERATOR_ID")
	if raw == "" {
		return
	}
	operator, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("ignoring invalid AYUDA_DEV_OPERATOR_ID", "error", err)
		return
	}
	ref.PutUser(refmodels.User{
		ID:   id.UserID(operator),
		Name: "dev operator",
		Capabilities: []refmodels.Capability{
			refmodels.CapabilityCreateCase,
			refmodels.CapabilityAssignCase,
			refmodels.CapabilityReviewCase,
			refmodels.CapabilityFulfillItem,
			refmodels.CapabilityManageStock,
			refmodels.CapabilityAttachFiles,
		},
		Active: true,
	})
}
