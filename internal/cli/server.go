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

	"quizrelay/internal/app"
	"quizrelay/internal/config"
	"quizrelay/internal/infra/memory"
	pgledger "quizrelay/internal/infra/postgres"
	redisinfra "quizrelay/internal/infra/redis"
	transport "quizrelay/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz distribution server",
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

	// The ledger is the sole source of truth; without Postgres it lives in
	// memory and survives only as long as the process (dev/demo mode).
	var ledger app.LedgerStore = memory.NewLedger()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		ledger = pgledger.NewLedger(pool)
	}

	runs := app.NewRunRegistry()
	prompts := app.NewPromptTable()
	correlator := app.NewCorrelator(prompts, ledger)

	var leaderboards app.LeaderboardSource = app.NewLeaderboardService(ledger)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheTTL := config.Duration(cfg.Redis.TTL, time.Minute)
		leaderboards = redisinfra.NewLeaderboardCache(redisClient, leaderboards, cacheTTL)
	}

	hub := transport.NewAudienceHub(correlator)
	pace := config.Duration(cfg.Dispatch.Pace, time.Second)
	distributor := app.NewDistributionService(runs, prompts, hub, cfg.Dispatch.Operators, pace)
	admin := transport.NewAdminHandler(distributor, leaderboards)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/distribute", admin.Distribute)
	mux.HandleFunc("/leaderboard", admin.Leaderboard)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizrelay on :%s", finalPort)
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

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
