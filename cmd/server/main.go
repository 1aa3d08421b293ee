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

	"golang.org/x/sync/errgroup"

	"verdict/internal/caseledger/handler"
	caseledgermetrics "verdict/internal/caseledger/metrics"
	caseledgerservice "verdict/internal/caseledger/service"
	caseledgerstore "verdict/internal/caseledger/store"
	"verdict/internal/encryption"
	"verdict/internal/events"
	"verdict/internal/events/kafka"
	eventsmemory "verdict/internal/events/memory"
	"verdict/internal/events/worker"
	"verdict/internal/platform/config"
	"verdict/internal/platform/httpserver"
	"verdict/internal/platform/logger"
	"verdict/internal/platform/postgres"
	"verdict/internal/platform/redis"
	registryhandler "verdict/internal/registry/handler"
	registrymetrics "verdict/internal/registry/metrics"
	registryservice "verdict/internal/registry/service"
	registrystore "verdict/internal/registry/store"
	reputationhandler "verdict/internal/reputation/handler"
	reputationmetrics "verdict/internal/reputation/metrics"
	reputationservice "verdict/internal/reputation/service"
	reputationstore "verdict/internal/reputation/store"
	httptransport "verdict/internal/transport/http"
	"verdict/internal/voting/commitments"
	votinghandler "verdict/internal/voting/handler"
	votingmetrics "verdict/internal/voting/metrics"
	votingservice "verdict/internal/voting/service"
)

// corePrincipal identifies the tally engine's own process to the encryption
// provider. Both encrypted counters stay readable only by this principal.
const corePrincipal = encryption.Principal("verdict-core")

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := encryption.NewPaillier(cfg.PaillierBits)
	if err != nil {
		return err
	}

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		caseStore       caseledgerservice.Store
		jurorStore      registryservice.JurorStore
		disclosureStore reputationservice.DisclosureStore
		healthChecks    []httptransport.HealthChecker
	)
	if db != nil {
		caseStore = caseledgerstore.NewPostgres(db, provider, corePrincipal)
		jurorStore = registrystore.NewPostgres(db)
		disclosureStore = reputationstore.NewPostgres(db)
	} else {
		caseStore = caseledgerstore.NewMemory()
		jurorStore = registrystore.NewMemory()
		disclosureStore = reputationstore.NewMemory()
		log.Warn("postgres not configured, using in-memory stores")
	}
	if redisClient != nil {
		healthChecks = append(healthChecks, redisClient)
	}

	var recorder commitments.Recorder
	if redisClient != nil {
		recorder = commitments.NewRedis(redisClient.Client)
	} else {
		recorder = commitments.NewMemory()
	}

	// Events flow through a buffered channel drained by a single worker so
	// publishing never blocks a vote or a reveal.
	channel := events.NewChannel(256)
	var sink events.Publisher = eventsmemory.NewSink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := kafka.New(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaPublisher.Close()
		sink = kafkaPublisher
	} else {
		log.Warn("kafka not configured, events stay in-process")
	}
	eventWorker := worker.New(sink, channel.Inbox(), log)

	caseService := caseledgerservice.New(caseStore, provider, corePrincipal,
		caseledgerservice.WithLogger(log),
		caseledgerservice.WithMetrics(caseledgermetrics.New()),
		caseledgerservice.WithPublisher(channel),
		caseledgerservice.WithJurorBounds(cfg.MinRequiredJurors, cfg.MaxRequiredJurors),
		caseledgerservice.WithVotingWindow(cfg.DefaultVotingWindow),
	)
	registryService := registryservice.New(jurorStore, caseStore,
		registryservice.WithLogger(log),
		registryservice.WithMetrics(registrymetrics.New()),
		registryservice.WithPublisher(channel),
		registryservice.WithDefaultReputation(cfg.ReputationDefault),
	)
	votingService := votingservice.New(caseStore, provider, corePrincipal,
		votingservice.WithLogger(log),
		votingservice.WithMetrics(votingmetrics.New()),
		votingservice.WithPublisher(channel),
		votingservice.WithCommitmentRecorder(recorder),
	)
	reputationService := reputationservice.New(jurorStore, caseStore, disclosureStore,
		reputationservice.WithLogger(log),
		reputationservice.WithMetrics(reputationmetrics.New()),
		reputationservice.WithAdjustment(cfg.ReputationDelta, cfg.ReputationFloor, cfg.ReputationCeiling),
	)

	router := httptransport.NewRouter(
		httptransport.Config{
			SigningKey: cfg.JWTSigningKey,
			Logger:     log,
			Health:     healthChecks,
		},
		handler.New(caseService, log),
		registryhandler.New(registryService, log),
		votinghandler.New(votingService, log),
		reputationhandler.New(reputationService, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting verdict server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return eventWorker.Run(gctx)
	})

	// Deadline sweeper: closes voting on cases whose deadline has passed.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				closed, err := caseService.CloseExpired(gctx, now.UTC())
				if err != nil {
					log.Error("deadline sweep failed", "error", err)
					continue
				}
				if closed > 0 {
					log.Info("deadline sweep closed cases", "count", closed)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
