package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"relaygate/internal/accesscontrol"
	"relaygate/internal/facets/token"
	"relaygate/internal/platform/config"
	"relaygate/internal/platform/httpserver"
	"relaygate/internal/platform/logger"
	"relaygate/internal/platform/middleware"
	"relaygate/internal/platform/postgres"
	platformredis "relaygate/internal/platform/redis"
	"relaygate/internal/relay/allowlist"
	"relaygate/internal/relay/dedup"
	"relaygate/internal/relay/dispatch"
	"relaygate/internal/relay/fees"
	"relaygate/internal/relay/handler"
	"relaygate/internal/relay/ledger"
	"relaygate/internal/relay/metrics"
	"relaygate/internal/relay/service"
	"relaygate/internal/relay/transport/kafka"
)

// main wires high-level dependencies and keeps the process lifecycle small.
// Business logic lives in the internal relay packages; this is the one-time
// provisioning step that assembles the unit from its facets.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	// Persistence: postgres when configured, in-memory otherwise.
	var (
		allowStore  allowlist.Store = allowlist.NewInMemory()
		ledgerStore ledger.Store    = ledger.NewInMemory()
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		allowStore = allowlist.NewPostgres(db)
		ledgerStore = ledger.NewPostgres(db)
	}

	var dedupStore dedup.Store = dedup.NewInMemory()
	rdb, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		dedupStore = dedup.NewRedis(rdb.Client)
	}

	// The relay transport: producing submits outbound messages; the consumer
	// group on the local chain's topic is the registered router delivering
	// inbound ones.
	kafkaClient, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.KafkaBrokers...),
		kgo.ConsumerGroup(cfg.RouterIdentity),
		kgo.ConsumeTopics(kafka.TopicForChain(cfg.LocalChain)),
	)
	if err != nil {
		return err
	}
	defer kafkaClient.Close()

	if err := kafka.EnsureTopics(ctx, kadm.NewClient(kafkaClient),
		append(cfg.RemoteChains, cfg.LocalChain)...); err != nil {
		return err
	}

	router := kafka.NewRouter(kafkaClient, kafka.RouterConfig{
		Identity:      cfg.RouterIdentity,
		LocalChain:    cfg.LocalChain,
		SenderAddress: cfg.SenderAddress,
		FeeBase:       cfg.FeeBase,
		FeePerByte:    cfg.FeePerByte,
	}, log)

	// Assemble the dispatch table from the deployed facets.
	table := dispatch.NewTable()
	tokenFacet := token.New(log)
	if err := tokenFacet.Register(table); err != nil {
		return err
	}
	log.Info("dispatch table assembled", "selectors", table.Selectors())

	svc := service.New(
		service.Config{RouterIdentity: cfg.RouterIdentity, NativeToken: cfg.NativeToken},
		allowStore, ledgerStore, table,
		fees.NewInMemory(cfg.NativeFunding),
		router,
		accesscontrol.ContextChecker{},
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithDedup(dedupStore),
	)

	h := handler.New(svc, log)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Group(h.RegisterPublic)
	r.Group(func(admin chi.Router) {
		admin.Use(accesscontrol.RequireAuth([]byte(cfg.JWTSigningKey), log))
		h.RegisterAdmin(admin)
	})

	srv := httpserver.New(cfg.Addr, r)
	consumer := kafka.NewConsumer(kafkaClient, cfg.RouterIdentity, svc, log)

	log.Info("starting relaygate",
		"addr", cfg.Addr,
		"chain", cfg.LocalChain,
		"router", cfg.RouterIdentity,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return consumer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
