package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	httpadapter "github.com/anushkayadav0901/SypherFinal/internal/adapters/http"
	"github.com/anushkayadav0901/SypherFinal/internal/adapters/memstore"
	pg "github.com/anushkayadav0901/SypherFinal/internal/adapters/postgres"
	"github.com/anushkayadav0901/SypherFinal/internal/catalog"
	"github.com/anushkayadav0901/SypherFinal/internal/commands"
	"github.com/anushkayadav0901/SypherFinal/internal/config"
	"github.com/anushkayadav0901/SypherFinal/internal/ledger"
	"github.com/anushkayadav0901/SypherFinal/internal/pagesource"
	"github.com/anushkayadav0901/SypherFinal/internal/ports"
	"github.com/anushkayadav0901/SypherFinal/internal/scorer"
	"github.com/anushkayadav0901/SypherFinal/internal/settings"
	"github.com/anushkayadav0901/SypherFinal/internal/workers/periodic"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Warn("config", slog.Any("warning", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store selection: Postgres when configured, in-memory otherwise.
	var store ports.KVStore
	if cfg.DatabaseURL != "" {
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()
		if err := pg.Migrate(ctx, db); err != nil {
			log.Error("db migrate failed", slog.Any("error", err))
			os.Exit(1)
		}
		store = db
	} else {
		log.Warn("no DATABASE_URL, ledger state will not survive restarts")
		store = memstore.New()
	}

	// Rule catalog: built-in data unless a catalog file is configured.
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			log.Error("catalog load failed", slog.Any("error", err))
			os.Exit(1)
		}
		cat = loaded
	}
	catalogs := catalog.NewProvider(cat)

	settingsSvc := settings.Load(ctx, store, log)
	riskScorer := scorer.New(catalogs, settingsSvc, log)
	ledgerSvc := ledger.New(store, log)
	dispatcher := commands.NewDispatcher(commands.Deps{
		Scorer:   riskScorer,
		Ledger:   ledgerSvc,
		Settings: settingsSvc,
	})

	srv := httpadapter.New(riskScorer, ledgerSvc, settingsSvc, dispatcher, log)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Background jobs: rescan, trim, catalog refresh. Rescans normally fetch
	// over plain HTTP; RESCAN_MODE=browser switches to a headless capture for
	// pages that render client-side.
	var pages ports.PageSource = pagesource.NewFetcher()
	if cfg.RescanMode == "browser" {
		pages = pagesource.NewBrowser(0)
	}
	runner := periodic.New(log)
	runner.Add("rescan", cfg.RescanInterval,
		periodic.RescanJob(riskScorer, ledgerSvc, pages, log))
	runner.Add("trim", cfg.TrimInterval, periodic.TrimJob(ledgerSvc))
	runner.Add("catalog-refresh", cfg.RefreshInterval,
		periodic.RefreshJob(catalogs, cfg.CatalogPath, log))
	runner.Start(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Info("listening", slog.String("addr", cfg.ListenAddr), slog.String("env", cfg.Env))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", slog.String("signal", sig.String()))
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Error("server error", slog.Any("error", fmt.Errorf("serve: %w", err)))
		os.Exit(1)
	}
}
