package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"atelier-learning-service/internal/app"
	"atelier-learning-service/internal/auth"
	"atelier-learning-service/internal/config"
	"atelier-learning-service/internal/infra/memory"
	pgstore "atelier-learning-service/internal/infra/postgres"
	redisinfra "atelier-learning-service/internal/infra/redis"
	transport "atelier-learning-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the learning service",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var catalogStore app.CatalogStore
	var progressRepo app.ProgressRepository
	var userStore auth.UserStore
	if pool != nil {
		catalogStore = pgstore.NewCatalogStore(pool)
		progressRepo = pgstore.NewProgressStore(pool)
		userStore = pgstore.NewUserStore(pool)
	} else {
		// Demo mode: in-memory catalogue and progress, nothing durable.
		catalogStore = memory.NewCatalogStore(sampleModules(), sampleLessons(), sampleQuizQuestions())
		progressRepo = memory.NewProgressStore()
		userStore = memory.NewUserStore()
	}

	if redisClient != nil {
		catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
		catalogStore = redisinfra.NewCatalogCache(redisClient, catalogStore, catalogTTL)
	}

	var feed app.ProgressFeed
	if redisClient != nil {
		feed = redisinfra.NewProgressFeed(redisClient)
	} else {
		feed = memory.NewFeedBus()
	}

	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	secret := cfg.Auth.Secret
	if secret == "" {
		secret = "dev-secret"
		log.Printf("auth secret not configured, using insecure default")
	}
	authService := auth.NewService(userStore, secret, tokenTTL)

	catalog := app.NewCatalog(catalogStore)
	wsHandler := transport.NewWSHandler(authService, catalog, progressRepo, feed)
	apiHandler := transport.NewAPIHandler(catalog, progressRepo, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/progress", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting learning service on :%s", finalPort)
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
