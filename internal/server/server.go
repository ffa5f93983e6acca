package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sidharth07/verbiforge-sub000/internal/config"
	"github.com/sidharth07/verbiforge-sub000/internal/database"
	"github.com/sidharth07/verbiforge-sub000/internal/handlers"
	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
	"github.com/sidharth07/verbiforge-sub000/internal/notify"
	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
	"github.com/sidharth07/verbiforge-sub000/internal/repositories"
	"github.com/sidharth07/verbiforge-sub000/internal/routes"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
	"github.com/sidharth07/verbiforge-sub000/internal/storage"
	"github.com/sidharth07/verbiforge-sub000/internal/utils"
)

type Server struct {
	http  *http.Server
	pool  *pgxpool.Pool
	sqlDB *sql.DB
	rdb   *redis.Client
	log   *slog.Logger
}

// New connects every backing service and wires the HTTP router. The schema
// is expected to be migrated already (cmd/migrate).
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	pool, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	// gorm shares the pgx pool
	sqlDB := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisRepo := repositories.NewRedisRepository(rdb)
	closeAll := func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
		pool.Close()
	}

	// Test Redis connection and fail fast with a clear message
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisRepo.Ping(pingCtx); err != nil {
		closeAll()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Info("connected to redis", "addr", cfg.Redis.Addr)

	files, err := storage.NewLocalStore(cfg.Storage.Dir)
	if err != nil {
		closeAll()
		return nil, err
	}

	seed := pricing.DefaultRateTable()
	if cfg.Rates.SeedFile != "" {
		if seed, err = pricing.LoadRateTableFile(cfg.Rates.SeedFile); err != nil {
			closeAll()
			return nil, err
		}
	}

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Mail.Enabled() {
		notifier = notify.NewSMTPNotifier(cfg.Mail)
		log.Info("smtp notifications enabled", "host", cfg.Mail.Host)
	}

	// Dependency injection
	userRepo := repositories.NewUserRepository(pool)
	projectRepo := repositories.NewProjectRepository(pool)
	rateRepo := repositories.NewRateRepository(pool)
	contactRepo := repositories.NewContactRepository(gormDB)

	issuer := utils.NewTokenIssuer(cfg.Auth.AccessTokenSecret, cfg.Auth.RefreshTokenSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	ids := services.NewIDGenerator(userRepo, projectRepo, log)
	rateService := services.NewRateService(rateRepo, seed, log)
	quoteService := services.NewQuoteService(rateService)
	userService := services.NewUserService(userRepo, projectRepo, files, ids, log)
	accountService := services.NewAccountService(userRepo, userService, log)
	authService := services.NewAuthService(userService, userRepo, redisRepo, issuer, log)
	projectService := services.NewProjectService(projectRepo, userRepo, quoteService, ids, files, notifier, log)
	contactService := services.NewContactService(contactRepo, notifier, log)

	if _, err := rateService.Current(ctx); err != nil {
		log.Warn("rate table not seeded at boot", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := NewRouter(cfg, log, registry, routes.Handlers{
		Auth:                 handlers.NewAuthHandler(authService, int(cfg.Auth.RefreshTokenTTL.Seconds()), log),
		User:                 handlers.NewUserHandler(userService, log),
		Quote:                handlers.NewQuoteHandler(quoteService, cfg.Storage.MaxUploadBytes, log),
		Project:              handlers.NewProjectHandler(projectService, cfg.Storage.MaxUploadBytes, log),
		Rate:                 handlers.NewRateHandler(rateService, log),
		Account:              handlers.NewAccountHandler(accountService, log),
		Contact:              handlers.NewContactHandler(contactService, log),
		Authenticate:         middlewares.Authenticate(authService, log),
		OptionalAuthenticate: middlewares.OptionalAuthenticate(authService, log),
	})

	// Create and configure the HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return &Server{http: srv, pool: pool, sqlDB: sqlDB, rdb: rdb, log: log}, nil
}

// NewRouter builds the gin engine with the ambient middleware stack.
func NewRouter(cfg *config.Config, log *slog.Logger, registry *prometheus.Registry, h routes.Handlers) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = cfg.Storage.MaxUploadBytes
	router.Use(
		gin.Recovery(),
		middlewares.RequestLogger(log),
		middlewares.NewMetrics(registry).Handler(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)
	routes.RegisterRoutes(router, h, registry)
	return router
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.log.Info("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and then closes the backing connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if cerr := s.sqlDB.Close(); cerr != nil {
		s.log.Warn("closing sql handle", "error", cerr)
	}
	s.pool.Close()
	if cerr := s.rdb.Close(); cerr != nil {
		s.log.Warn("closing redis", "error", cerr)
	}
	return err
}
