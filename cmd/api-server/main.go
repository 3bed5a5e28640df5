package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"libraryhub/database"
	"libraryhub/internal/api/cache"
	"libraryhub/internal/api/handler"
	"libraryhub/internal/api/middleware"
	"libraryhub/internal/api/repository"
	"libraryhub/internal/api/service"
	"libraryhub/internal/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("database close failed", "error", err)
		}
	}()

	bookCache, err := cache.NewBookCache(cfg.RedisURL, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer bookCache.Close()

	coordinator := repository.NewCoordinator(db, repository.Budgets{
		MaxWait:    cfg.TxMaxWait,
		Timeout:    cfg.TxTimeout,
		MaxRetries: cfg.TxMaxRetries,
	}, logger)

	// Standalone repositories serve the read paths; writes that touch more
	// than one entity go through the coordinator's unit of work.
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	authorRepo := repository.NewAuthorRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	fineRepo := repository.NewFineRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	authService := service.NewAuthService(userRepo, libraryRepo, cfg)
	catalogService := service.NewCatalogService(libraryRepo, authorRepo, genreRepo)
	policyService := service.NewPolicyService(policyRepo, libraryRepo)
	bookService := service.NewBookService(coordinator, bookRepo, libraryRepo, bookCache, logger)
	circulationService := service.NewCirculationService(coordinator, loanRepo, bookCache, logger)
	reservationService := service.NewReservationService(coordinator, reservationRepo, bookCache, logger)
	fineService := service.NewFineService(coordinator, fineRepo)
	reviewService := service.NewReviewService(reviewRepo, bookRepo)
	wishlistService := service.NewWishlistService(membershipRepo, bookRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(authService, cfg)

	public := router.Group("/api/v1")
	authHandler.RegisterRoutes(public)

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(authService))
	authHandler.RegisterProtectedRoutes(protected)
	handler.NewLibraryHandler(catalogService, policyService).RegisterRoutes(protected)
	handler.NewCatalogHandler(catalogService).RegisterRoutes(protected)
	handler.NewBookHandler(bookService, reviewService).RegisterRoutes(protected)
	handler.NewReviewHandler(reviewService).RegisterRoutes(protected)
	handler.NewCirculationHandler(circulationService).RegisterRoutes(protected)
	handler.NewReservationHandler(reservationService).RegisterRoutes(protected)
	handler.NewFineHandler(fineService).RegisterRoutes(protected)
	handler.NewWishlistHandler(wishlistService).RegisterRoutes(protected)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewReservationSweeper(reservationService, cfg.ReservationSweepInterval, logger)
	go sweeper.Run(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		logger.Info("api server listening", "port", cfg.HTTPPort, "env", cfg.GoEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
