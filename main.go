package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"agroai-backend/internal/common"
	"agroai-backend/internal/db"
	"agroai-backend/internal/logic"
	"agroai-backend/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	configPath := flag.String("config", os.Getenv("AGROAI_CONFIG"), "path to a config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := common.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)

	repo, err := db.Open(cfg.DB(), logger)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer repo.Close()

	responder, err := newResponder(cfg.Chat, logger)
	if err != nil {
		return fmt.Errorf("init chat responder: %w", err)
	}

	weather := provider.NewWeatherClient(provider.WeatherConfig{
		APIKey:  cfg.Weather.APIKey,
		BaseURL: cfg.Weather.BaseURL,
		Timeout: cfg.Weather.Timeout,
	}, logger)
	market := provider.NewMarketClient(provider.MarketConfig{
		APIKey:  cfg.Market.APIKey,
		BaseURL: cfg.Market.BaseURL,
		Timeout: cfg.Market.Timeout,
	}, logger)

	refreshed := logic.NewMarketRefresher(repo, market, cfg.Market.TrackedCrops, cfg.Market.RefreshHour, logger).Start(ctx)

	router := logic.SetupRouter(&logic.Handler{
		Repo:          repo,
		Responder:     responder,
		Diagnoser:     logic.NewTableDiagnoser(repo),
		Weather:       weather,
		Market:        market,
		Logger:        logger,
		ChatRateLimit: cfg.Chat.RateLimit,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: router}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("database", cfg.DB().String()),
			zap.String("chat_provider", cfg.Chat.Provider),
			zap.Bool("live_weather", weather.Enabled()),
			zap.Bool("live_market", market.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	select {
	case <-refreshed:
	case <-shutdownCtx.Done():
		logger.Warn("market refresher still running at shutdown")
	}
	return err
}

func newResponder(cfg ChatConfig, logger *zap.Logger) (logic.Responder, error) {
	switch cfg.Provider {
	case ChatOpenAI:
		return logic.NewLangChainResponder(logic.LLMConfig{
			Token:   cfg.Token,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}, logger)
	case ChatHunyuan:
		return logic.NewHunyuanResponder(logic.HunyuanConfig{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			Model:     cfg.Model,
		}, logger)
	default:
		return logic.NewKeywordResponder(), nil
	}
}
