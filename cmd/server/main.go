package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"brandcanvas/internal/auth"
	"brandcanvas/internal/config"
	"brandcanvas/internal/handler"
	"brandcanvas/internal/middleware"
	"brandcanvas/internal/pdfutil"
	"brandcanvas/internal/preset"
	"brandcanvas/internal/reconciler"
	"brandcanvas/internal/repository/postgres"
	"brandcanvas/internal/service"
	"brandcanvas/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	canvasRepo := postgres.NewCanvasRepository(repoConfig)
	presetRepo := postgres.NewPresetRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Object storage for migrated node blobs. Falls back to a disabled
	// store when credentials are absent - inline payloads then stay in
	// the document until they expire.
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}
	if store.IsConfigured() {
		logger.Info("object storage configured", "bucket", cfg.S3Bucket)
	} else {
		logger.Warn("object storage not configured, inline payloads will not be migrated")
	}

	// Blob reconciliation pipeline
	migrator := reconciler.NewMigrator(store, pdfutil.NewOptimizer(), logger)
	pipeline := reconciler.NewPipeline(cfg.InlineTTL, migrator)

	// Built-in preset catalog (embedded)
	catalog, err := preset.NewCatalog()
	if err != nil {
		log.Fatalf("Failed to load preset catalog: %v", err)
	}
	logger.Info("preset catalog loaded", "presets", len(catalog.List()))

	// Create services
	canvasService := service.NewCanvasService(canvasRepo, txManager, pipeline, cfg, logger)
	presetService := service.NewPresetService(catalog, presetRepo, logger)

	// Create handlers
	canvasHandler := handler.NewCanvasHandler(canvasService, cfg, logger)
	presetHandler := handler.NewPresetHandler(presetService, logger)
	healthHandler := handler.NewHealthHandler()

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Canvas routes
	mux.HandleFunc("GET /api/canvases", canvasHandler.ListCanvases)
	mux.HandleFunc("POST /api/canvases", canvasHandler.CreateCanvas)
	mux.HandleFunc("GET /api/canvases/{id}", canvasHandler.GetCanvas)
	mux.HandleFunc("PATCH /api/canvases/{id}", canvasHandler.UpdateCanvas)
	mux.HandleFunc("DELETE /api/canvases/{id}", canvasHandler.DeleteCanvas)

	// Sharing routes
	mux.HandleFunc("POST /api/canvases/{id}/share", canvasHandler.EnableSharing)
	mux.HandleFunc("DELETE /api/canvases/{id}/share", canvasHandler.DisableSharing)
	mux.HandleFunc("PUT /api/canvases/{id}/collaborators", canvasHandler.SetCollaborators)

	// Public share route (no auth)
	mux.HandleFunc("GET /api/shared/{shareId}", canvasHandler.GetSharedCanvas)

	// Preset routes
	mux.HandleFunc("GET /api/presets", presetHandler.ListPresets)
	mux.HandleFunc("POST /api/presets", presetHandler.PublishPreset)
	mux.HandleFunc("GET /api/presets/{id}", presetHandler.GetPreset)
	mux.HandleFunc("DELETE /api/presets/{id}", presetHandler.DeletePreset)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.Auth(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server. Write timeout is generous: migrating a large
	// save fans out uploads to object storage before responding.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
