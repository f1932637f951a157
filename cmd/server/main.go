package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/api"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("load .env")
	}
	configureLogging()

	if mode := strings.TrimSpace(os.Getenv("GIN_MODE")); mode != "" {
		gin.SetMode(mode)
	}

	predictionCfg := classifier.Config{BaseURL: os.Getenv("PREDICTION_API_URL")}
	if timeout := os.Getenv("PREDICTION_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			predictionCfg.Timeout = d
		} else {
			logrus.WithError(err).Warn("ignore PREDICTION_TIMEOUT")
		}
	}

	sessionTTL := 2 * time.Hour
	if ttl := os.Getenv("SESSION_IDLE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			sessionTTL = d
		} else {
			logrus.WithError(err).Warn("ignore SESSION_IDLE_TTL")
		}
	}

	cfg := api.Config{
		Prediction:     predictionCfg,
		HistoryDBPath:  strings.TrimSpace(os.Getenv("HISTORY_DB_PATH")),
		SilentDB:       !logrus.IsLevelEnabled(logrus.DebugLevel),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		SessionIdleTTL: sessionTTL,
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	defer func() {
		if cerr := server.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close history store")
		}
	}()

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go server.RunBackground(ctx)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("starting hate speech console on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server exited: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down hate speech console")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
}

func configureLogging() {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			logrus.WithError(err).Warn("ignore LOG_LEVEL")
			return
		}
		logrus.SetLevel(parsed)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
