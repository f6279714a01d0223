package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"workmarket/internal/config"
	"workmarket/internal/handler"
	"workmarket/internal/middleware"
	"workmarket/internal/repository"
	"workmarket/internal/service"
	"workmarket/internal/store"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "workmarket", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}
	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
	)

	ctx := context.Background()
	st, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer cleanup()

	// Repositories: one per entity kind, all over the same store handle
	userRepo := repository.NewUserRepository(st, logger)
	clientRepo := repository.NewClientRepository(st, logger)
	companyRepo := repository.NewCompanyRepository(st, logger)
	freelancerRepo := repository.NewFreelancerRepository(st, logger)
	orderRepo := repository.NewOrderRepository(st, logger)
	applicationRepo := repository.NewApplicationRepository(st, logger)

	orderService := service.NewOrderService(orderRepo, clientRepo, companyRepo, userRepo, applicationRepo, logger)
	applicationService := service.NewApplicationService(applicationRepo, orderRepo, freelancerRepo, logger)

	orderHandler := handler.NewOrderHandler(orderService, cfg.DefaultPageSize, logger)
	applicationHandler := handler.NewApplicationHandler(applicationService, logger)
	healthHandler := handler.NewHealthHandler(st, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)

	// Order routes
	mux.HandleFunc("POST /api/orders", orderHandler.CreateOrder)
	mux.HandleFunc("GET /api/orders", orderHandler.ListApprovedOrders)
	mux.HandleFunc("GET /api/orders/pending", orderHandler.ListPendingOrders)
	mux.HandleFunc("GET /api/orders/mine", orderHandler.ListMyOrders)
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetOrder)
	mux.HandleFunc("PATCH /api/orders/{id}", orderHandler.UpdateOrder)
	mux.HandleFunc("POST /api/orders/{id}/approve", orderHandler.ApproveOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", orderHandler.UpdateOrderStatus)

	// Application / allocation routes
	mux.HandleFunc("POST /api/applications", applicationHandler.CreateApplication)
	mux.HandleFunc("GET /api/applications/mine", applicationHandler.ListMine)
	mux.HandleFunc("GET /api/applications/{id}", applicationHandler.GetApplication)
	mux.HandleFunc("PATCH /api/applications/{id}/status", applicationHandler.UpdateApplicationStatus)
	mux.HandleFunc("GET /api/orders/{id}/applications", applicationHandler.ListByOrder)
	mux.HandleFunc("GET /api/orders/{id}/specializations/available", applicationHandler.AvailableSpecializations)
	mux.HandleFunc("GET /api/orders/{id}/eligibility", applicationHandler.ValidateEligibility)

	var root http.Handler = mux
	root = middleware.Identity(root)
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildStore constructs the configured document-store backend. The handle
// is created once here and passed explicitly to every repository; nothing
// else in the process reaches for a global.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		st, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = st.Close(shutdownCtx)
		}
		return st, cleanup, nil

	case config.BackendPostgres:
		pool, err := store.CreatePostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		st := store.NewPostgresStore(pool, cfg.TablePrefix+"documents")
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return st, pool.Close, nil

	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}
