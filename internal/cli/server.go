package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simulado-service/internal/app"
	"simulado-service/internal/config"
	"simulado-service/internal/content"
	"simulado-service/internal/infra/memory"
	pgsource "simulado-service/internal/infra/postgres"
	redscache "simulado-service/internal/infra/redis"
	"simulado-service/internal/infra/sqlite"
	transport "simulado-service/internal/transport/http"
	"simulado-service/internal/watcher"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the simulado server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "5000"
	}

	contentDir := cfg.Content.Dir
	if contentDir == "" {
		contentDir = "simulados"
	}
	contentTTL := config.TTLDuration(cfg.Content.TTL, 5*time.Minute)

	// Content source: the directory loader by default, Postgres when configured.
	loader := content.NewLoader(contentDir)
	var source memory.Source = loader
	var pgPool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pgPool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pgPool.Close()
		source = pgsource.NewSimuladoSource(pgPool)
		if err := migratePostgres(ctx, cfg.Postgres.URL); err != nil {
			return err
		}
	}

	// Fingerprint checks stat the file on every lookup; for the Postgres
	// source that would cost a query per hit, so TTL alone bounds staleness.
	checkFingerprint := pgPool == nil
	docs := memory.NewContentCache(source, contentTTL, checkFingerprint)
	list := memory.NewListCache(source, docs, contentTTL)

	var remote app.RemoteCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		remote = redscache.NewContentCache(redisClient,
			config.TTLDuration(cfg.Redis.TTL, time.Hour),
			config.TTLDuration(cfg.Redis.ListTTL, 10*time.Minute))
	}

	store, err := sqlite.Open(userDBPath(cfg), cfg.SQLite.MaxConns)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := MigrateUserStore(ctx, store.DB()); err != nil {
		return err
	}

	shuffler := content.NewShuffler(cfg.Content.ShuffleQuestionOrder)
	service := app.NewService(docs, list, remote, shuffler, store)

	if cfg.Content.Watch && pgPool == nil {
		w, err := watcher.New(contentDir, func(id string) {
			service.InvalidateSimulado(context.Background(), id)
		})
		if err != nil {
			// TTL expiry still bounds staleness without the watcher.
			log.Printf("watcher unavailable, relying on TTL invalidation: %v", err)
		} else {
			defer w.Close()
			log.Printf("watching %s for content changes", contentDir)
		}
	}

	mux := http.NewServeMux()
	transport.NewHandler(service).Register(mux)
	mux.HandleFunc("GET /ws/events", transport.NewWSHandler(service).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting simulado service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
