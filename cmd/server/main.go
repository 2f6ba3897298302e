package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"fidelity-backend/internal/api"
	"fidelity-backend/internal/config"
	"fidelity-backend/internal/evaluate"
	"fidelity-backend/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize Services
	evaluator := evaluate.New(metrics.Library(), evaluate.Options{
		Workers:    cfg.Evaluation.Workers,
		ChunkRows:  cfg.Evaluation.ChunkRows,
		DefaultSet: cfg.Evaluation.MetricSet,
		Logger:     logger,
	})
	handler := api.NewHandler(evaluator, cfg, logger)

	// Router Setup
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Synthetic data fidelity service is running"))
	})

	handler.RegisterRoutes(r)

	logger.Info("starting server",
		"addr", "http://localhost:"+cfg.Server.Port,
		"origins", strings.Join(cfg.Server.AllowedOrigins, ","),
		"metric_set", cfg.Evaluation.MetricSet)

	if err := http.ListenAndServe(":"+cfg.Server.Port, r); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
