package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/config"
	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/handlers"
	"github.com/ygarasab/acaimar-api/internal/logger"
	"github.com/ygarasab/acaimar-api/internal/middleware"
	"github.com/ygarasab/acaimar-api/internal/models"
	"github.com/ygarasab/acaimar-api/internal/services/auth"
	"github.com/ygarasab/acaimar-api/internal/services/charts"
	"github.com/ygarasab/acaimar-api/internal/telemetry"
)

const serviceName = "acaimar-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync(zapLogger)

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if cfg.UsingDevSecret {
		zapLogger.Warn("using_insecure_dev_jwt_secret",
			zap.String("detail", "JWT_SECRET is unset; tokens are signed with a publicly known development secret"),
		)
	}

	// OpenTelemetry tracing (optional)
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.Init(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// MongoDB
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startupCancel()

	db, err := database.Connect(startupCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := db.Close(closeCtx); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Repositories. The user repository ensures the unique email index on
	// startup.
	userRepo, err := database.NewUserRepository(startupCtx, db)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_user_repository", zap.Error(err))
	}
	metaRepo := database.NewMetaRepository(db)
	sensorRepo := database.NewSensorRepository(db)

	// Services
	hasher := auth.NewBcryptHasher()
	tokenCodec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(userRepo, hasher, zapLogger)

	// Chart cache (optional). A nil cache disables caching without
	// branching at the call sites.
	var chartCache *charts.Cache
	if cfg.RedisURL != "" {
		chartCache, err = charts.NewCache(cfg.RedisURL, cfg.ChartCacheTTL, zapLogger)
		if err != nil {
			zapLogger.Warn("failed_to_configure_chart_cache", zap.Error(err))
			chartCache = nil
		} else {
			defer func() {
				if err := chartCache.Close(); err != nil {
					zapLogger.Warn("failed_to_close_chart_cache", zap.Error(err))
				}
			}()
			zapLogger.Info("chart_cache_enabled", zap.Duration("ttl", cfg.ChartCacheTTL))
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokenCodec, zapLogger)
	metaHandler := handlers.NewMetaHandler(metaRepo, zapLogger)
	userHandler := handlers.NewUserAdminHandler(userRepo, authService, zapLogger)
	chartHandler := handlers.NewChartHandler(metaRepo, sensorRepo, chartCache, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, chartCache, zapLogger)
	openAPIHandler := handlers.NewOpenAPIHandler(cfg.OpenAPIDir, zapLogger)

	// Router. Use() middleware runs in registration order, first registered
	// is outermost.
	r := mux.NewRouter()

	// 0. OpenTelemetry tracing (if enabled)
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
	}
	// 1. Security headers on all responses
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	// 2. CORS
	r.Use(middleware.CORS(cfg.FrontendURL))
	// 3. Request ID assignment
	r.Use(middleware.RequestID)
	// 4. Request size limit
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	// 5. Content-Type validation for mutating requests
	r.Use(middleware.ContentType)
	// 6. Request timeout
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	// 7. Panic recovery
	r.Use(middleware.ErrorHandler(zapLogger))
	// 8. Request logging (innermost)
	r.Use(middleware.Logging(zapLogger))

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"Method not allowed"}`))
	})

	api := r.PathPrefix("/api").Subrouter()

	// Probes (public)
	api.HandleFunc("/ok", healthChecker.Ok).Methods("GET")
	api.HandleFunc("/health", healthChecker.HealthCheck).Methods("GET")

	// Auth (public; verify handles its own token)
	authRouter := api.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(authRouter)

	// Metas: reads for any authenticated user, writes for admins
	metasRead := api.PathPrefix("/metas").Subrouter()
	metasRead.Use(middleware.Auth(tokenCodec, zapLogger))
	metaHandler.RegisterReadRoutes(metasRead)

	metasAdmin := api.PathPrefix("/metas").Subrouter()
	metasAdmin.Use(middleware.RequireRole(tokenCodec, models.RoleAdmin, zapLogger))
	metaHandler.RegisterAdminRoutes(metasAdmin)

	// User administration (admins only)
	usersRouter := api.PathPrefix("/users").Subrouter()
	usersRouter.Use(middleware.RequireRole(tokenCodec, models.RoleAdmin, zapLogger))
	userHandler.RegisterRoutes(usersRouter)

	// Dashboard visualizations (public)
	vizRouter := api.PathPrefix("/visualization").Subrouter()
	chartHandler.RegisterRoutes(vizRouter)

	// OpenAPI document (public)
	openAPIHandler.RegisterRoutes(api)

	// Catch-all OPTIONS handler so preflight requests reach the CORS layer
	// even on routes that only declare other methods.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
