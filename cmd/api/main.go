package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/triphive/triphive-api/internal/adapters/httpapi"
	memdestinationrepo "github.com/triphive/triphive-api/internal/adapters/memory/destinationrepo"
	memmembershiprepo "github.com/triphive/triphive-api/internal/adapters/memory/membershiprepo"
	mempreferencerepo "github.com/triphive/triphive-api/internal/adapters/memory/preferencerepo"
	memtriprepo "github.com/triphive/triphive-api/internal/adapters/memory/triprepo"
	memviewcache "github.com/triphive/triphive-api/internal/adapters/memory/viewcache"
	postgres "github.com/triphive/triphive-api/internal/adapters/postgres"
	pgdestinationrepo "github.com/triphive/triphive-api/internal/adapters/postgres/destinationrepo"
	pgmembershiprepo "github.com/triphive/triphive-api/internal/adapters/postgres/membershiprepo"
	pgpreferencerepo "github.com/triphive/triphive-api/internal/adapters/postgres/preferencerepo"
	pgtriprepo "github.com/triphive/triphive-api/internal/adapters/postgres/triprepo"
	"github.com/triphive/triphive-api/internal/adapters/travelapi"
	"github.com/triphive/triphive-api/internal/app/estimates"
	"github.com/triphive/triphive-api/internal/app/joincode"
	"github.com/triphive/triphive-api/internal/app/preferences"
	"github.com/triphive/triphive-api/internal/app/trips"
	"github.com/triphive/triphive-api/internal/app/voting"
	"github.com/triphive/triphive-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/triphive/triphive-api/internal/platform/clock"
	"github.com/triphive/triphive-api/internal/platform/config"
	destinationrepoport "github.com/triphive/triphive-api/internal/ports/out/destinationrepo"
	membershiprepoport "github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	preferencerepoport "github.com/triphive/triphive-api/internal/ports/out/preferencerepo"
	travelquotesport "github.com/triphive/triphive-api/internal/ports/out/travelquotes"
	triprepoport "github.com/triphive/triphive-api/internal/ports/out/triprepo"
	"github.com/triphive/triphive-api/migrations"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case config.AuthModeDev:
		log.Warn("dev auth mode enabled; do not use in production")
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevSubject)
	default:
		authMW = httpapi.NewAuthMiddleware(jwtverifier.New(cfg.JWT))
	}

	var (
		tripRepo        triprepoport.Repository
		membershipRepo  membershiprepoport.Repository
		preferenceRepo  preferencerepoport.Repository
		destinationRepo destinationrepoport.Repository
	)

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		if cfg.MigrateOnStart {
			if err := migrateUp(cfg.DatabaseURL); err != nil {
				log.Error("migrations failed", "err", err)
				os.Exit(1)
			}
			log.Info("migrations applied")
		}
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Error("postgres unavailable", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		tripRepo = pgtriprepo.NewRepo(pool)
		membershipRepo = pgmembershiprepo.NewRepo(pool)
		preferenceRepo = pgpreferencerepo.NewRepo(pool)
		destinationRepo = pgdestinationrepo.NewRepo(pool)
	default:
		tripRepo = memtriprepo.NewRepo()
		membershipRepo = memmembershiprepo.NewRepo()
		preferenceRepo = mempreferencerepo.NewRepo()
		destinationRepo = memdestinationrepo.NewRepo()
	}

	clk := platformclock.NewSystemClock()
	cache := memviewcache.NewRecorder()

	// Quote provider: live API when configured, with the seeded mock both as
	// the standalone provider and as the degradation path.
	mock := travelapi.NewMock(uint64(time.Now().UnixNano()))
	var quotes travelquotesport.Provider = mock
	if cfg.TravelAPIBaseURL != "" {
		live := travelapi.NewClient(cfg.TravelAPIBaseURL, cfg.TravelAPIKey, travelapi.ClientOptions{})
		quotes = travelapi.NewFallback(live, mock, log)
	}

	joinSvc := joincode.NewService(tripRepo, membershipRepo, cache, clk, log)
	tripsSvc := trips.NewService(tripRepo, membershipRepo, joinSvc, cache, clk)
	prefsSvc := preferences.NewService(preferenceRepo, tripRepo, membershipRepo, clk)
	votingSvc := voting.NewService(destinationRepo, tripRepo, membershipRepo, clk)
	estimatesSvc := estimates.NewService(quotes, tripRepo, membershipRepo, preferenceRepo)

	api := httpapi.NewServer(tripsSvc, joinSvc, prefsSvc, votingSvc, estimatesSvc)
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		Auth:        authMW,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api listening", "port", cfg.Port, "storage", cfg.StorageBackend, "auth", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func migrateUp(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
