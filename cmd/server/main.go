package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/obrennan/stocktalk/internal/adapter/events"
	"github.com/obrennan/stocktalk/internal/adapter/handler"
	"github.com/obrennan/stocktalk/internal/adapter/llm"
	"github.com/obrennan/stocktalk/internal/adapter/storage"
	"github.com/obrennan/stocktalk/internal/config"
	"github.com/obrennan/stocktalk/internal/core/service"
	"github.com/obrennan/stocktalk/internal/port"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("connect mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	// NATS is optional; without it change notifications are disabled.
	var nc *nats.Conn
	var publisher port.EventPublisher
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Fatal("connect nats", zap.Error(err))
		}
		publisher = events.NewNATSPublisher(nc)
		logger.Info("connected to nats", zap.String("url", cfg.NATSURL))
	}

	llmCfg := llm.DefaultConfig()
	llmCfg.BaseURL = cfg.LLMBaseURL
	llmCfg.APIKey = cfg.LLMAPIKey
	llmCfg.Model = cfg.LLMModel
	llmCfg.Timeout = cfg.LLMTimeout
	llmClient := llm.NewClient(llmCfg, logger)

	// Initialize adapters
	inventory := storage.NewMySQLAdapter(db)
	orgs := storage.NewMySQLOrgAdapter(db)
	limiter := storage.NewRedisAdapter(rdb)

	policy := service.DefaultPolicy()
	policy.ConfidenceThreshold = cfg.ConfidenceThreshold
	policy.DeleteCap = cfg.DeleteCap
	policy.SummaryLimit = cfg.SummaryLimit
	policy.RateLimit = cfg.RateLimit
	policy.RateWindow = cfg.RateWindow

	commands := service.NewCommandService(service.CommandDeps{
		Repo:    inventory,
		Auth:    orgs,
		Limiter: limiter,
		Tiers:   orgs,
		Usage:   orgs,
		LLM:     llmClient,
		Events:  publisher,
	}, policy, logger)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(commands)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/command", httpHandler.Command)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	if nc != nil {
		nc.Drain()
	}
	rdb.Close()
	db.Close()
	logger.Info("stopped")
}
