// Command studio runs the creative pipeline service: prompt templates,
// the asset vault, curation, sessions, and remix chains behind one HTTP
// surface. State lives in memory; the event stream can optionally be
// mirrored into Postgres, and large payloads parked in MinIO.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atelier-labs/atelier-go/internal/curator"
	"github.com/atelier-labs/atelier-go/internal/guardians"
	"github.com/atelier-labs/atelier-go/internal/platform/env"
	"github.com/atelier-labs/atelier-go/internal/platform/event"
	"github.com/atelier-labs/atelier-go/internal/platform/eventlog"
	"github.com/atelier-labs/atelier-go/internal/platform/httpserver"
	"github.com/atelier-labs/atelier-go/internal/platform/objectstore"
	"github.com/atelier-labs/atelier-go/internal/platform/postgres"
	"github.com/atelier-labs/atelier-go/internal/promptengine"
	"github.com/atelier-labs/atelier-go/internal/remix"
	"github.com/atelier-labs/atelier-go/internal/repo/memory"
	"github.com/atelier-labs/atelier-go/internal/session"
	"github.com/atelier-labs/atelier-go/internal/vault"
)

const service = "studio"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := env.String("STUDIO_HTTP_ADDR", ":8080")
	curatorID := env.String("STUDIO_CURATOR_ID", "curator-prime")
	shutdownTimeout, err := env.Duration("STUDIO_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		logger.Error("shutdown timeout", "error", err)
		os.Exit(1)
	}

	roster := guardians.Builtin()
	if path := env.String("STUDIO_GUARDIANS_FILE", ""); path != "" {
		loaded, err := guardians.LoadFile(path)
		if err != nil {
			logger.Error("load guardians file", "path", path, "error", err)
			os.Exit(1)
		}
		roster = loaded
		logger.Info("guardian roster loaded", "path", path, "guardians", len(roster))
	}

	bus := event.NewBus()
	var checks []httpserver.ReadinessCheck
	var payloads *objectstore.PayloadStore

	if os.Getenv("DATABASE_URL") != "" {
		pgCfg, err := postgres.ConfigFromEnv()
		if err != nil {
			logger.Error("postgres config", "error", err)
			os.Exit(1)
		}
		db, err := postgres.Open(ctx, pgCfg)
		if err != nil {
			logger.Error("postgres open", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := eventlog.EnsureSchema(ctx, db); err != nil {
			logger.Error("event log schema", "error", err)
			os.Exit(1)
		}
		bus.Subscribe(eventlog.NewSink(db, logger))
		checks = append(checks, httpserver.ReadinessCheck{
			Name:  "postgres",
			Check: db.PingContext,
		})
		logger.Info("event log enabled")
	}

	if os.Getenv("ATELIER_MINIO_ENDPOINT") != "" {
		objCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			logger.Error("object store config", "error", err)
			os.Exit(1)
		}
		client, err := objectstore.NewMinIOClient(objCfg)
		if err != nil {
			logger.Error("object store client", "error", err)
			os.Exit(1)
		}
		if err := objectstore.EnsureBucket(ctx, client, objCfg); err != nil {
			logger.Error("object store bucket", "error", err)
			os.Exit(1)
		}
		payloads, err = objectstore.NewPayloadStoreWithClient(client, objCfg.BucketPayloads)
		if err != nil {
			logger.Error("payload store", "error", err)
			os.Exit(1)
		}
		checks = append(checks, httpserver.ReadinessCheck{
			Name: "objectstore",
			Check: func(ctx context.Context) error {
				return objectstore.CheckBucket(ctx, client, objCfg)
			},
		})
		logger.Info("object store enabled", "bucket", objCfg.BucketPayloads)
	}

	engine := promptengine.New(memory.NewTemplateRepository(), roster, logger)
	assetVault := vault.New(memory.NewAssetRepository(), bus, logger)
	judge := curator.New(curatorID, roster, logger)
	sessions := session.New(memory.NewSessionRepository(), bus, logger)
	remixes := remix.New(memory.NewChainRepository(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", httpserver.Healthz(service))
	mux.HandleFunc("GET /readyz", httpserver.ReadyzWithChecks(service, checks...))
	newStudioAPI(logger, engine, assetVault, judge, sessions, remixes, roster, payloads).register(mux)

	handler := httpserver.Wrap(logger, service, mux)
	cfg := httpserver.Config{
		Service:         service,
		Addr:            addr,
		ShutdownTimeout: shutdownTimeout,
	}
	if err := httpserver.Run(ctx, logger, cfg, handler); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
