package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/schakibb/Manehej-back/src/config"
	"github.com/schakibb/Manehej-back/src/database"
	"github.com/schakibb/Manehej-back/src/handlers"
	"github.com/schakibb/Manehej-back/src/logging"
	"github.com/schakibb/Manehej-back/src/middleware"
	"github.com/schakibb/Manehej-back/src/repositories"
	"github.com/schakibb/Manehej-back/src/repositories/memory"
	"github.com/schakibb/Manehej-back/src/repositories/postgres"
	"github.com/schakibb/Manehej-back/src/services"
	"github.com/schakibb/Manehej-back/src/tokens"
)

const (
	version      = "1.0.0"
	maxBodyBytes = 5 << 20
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().
		Int("port", cfg.Port).
		Str("env", cfg.Env).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("starting server")

	// Store
	var (
		db       *database.Database
		admins   repositories.AdminRepository
		sessions repositories.SessionRepository
		pinger   handlers.Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory store, sessions and admins are lost on restart")
		admins = memory.NewAdminRepository()
		sessions = memory.NewSessionRepository(nil)
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		var err error
		db, err = database.New(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize database")
			return 1
		}
		log.Info().Msg("database connected")
		admins = postgres.NewAdminRepository(db)
		sessions = postgres.NewSessionRepository(db)
		pinger = db
	}

	codec, err := tokens.NewCodec(tokens.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize token codec")
		closeDB(db)
		return 1
	}

	authService := services.NewAuthService(admins, sessions, codec, services.NewBcryptHasher(0))

	// Seed admins on first run
	if err := seedAdmins(authService, cfg); err != nil {
		log.Error().Err(err).Msg("failed to seed admins")
		closeDB(db)
		return 1
	}

	cleanupService := services.NewCleanupService(authService, cfg.CleanupInterval)
	cleanupService.Start(context.Background())

	generalLimiter := middleware.NewIPRateLimiter(middleware.GeneralRateLimit)
	loginLimiter := middleware.NewIPRateLimiter(middleware.LoginRateLimit)
	passwordLimiter := middleware.NewIPRateLimiter(middleware.PasswordChangeRateLimit)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.FrontendURL))
	router.Use(middleware.BodyLimit(maxBodyBytes))
	router.Use(generalLimiter.Middleware())

	cookies := &middleware.Cookies{
		Secure:        cfg.IsProduction(),
		AccessMaxAge:  cfg.AccessCookieMaxAge,
		RefreshMaxAge: cfg.RefreshCookieMaxAge,
	}
	gate := middleware.NewGate(codec, authService, cookies)

	handlers.RegisterRoutes(router,
		handlers.NewAuthHandler(authService, cookies, cfg.IsDevelopment()),
		handlers.NewHealthHandler(pinger, cfg.Env, version),
		gate,
		handlers.RouteLimits{
			Login:          loginLimiter.Middleware(),
			PasswordChange: passwordLimiter.Middleware(),
		},
	)

	// G112: ReadHeaderTimeout guards against Slowloris
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Port).
			Str("health", "/health").
			Str("auth", handlers.AuthBasePath).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	exitCode := 0
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
		exitCode = 1
	}

	cleanupService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		exitCode = 1
	} else {
		log.Info().Msg("http server closed")
	}

	// The sweep needs the store, so it runs before the pool is closed
	if n, err := authService.CleanupExpiredSessions(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clean up expired sessions")
		exitCode = 1
	} else {
		log.Info().Int64("deleted", n).Msg("expired sessions cleaned up")
	}

	generalLimiter.Stop()
	loginLimiter.Stop()
	passwordLimiter.Stop()

	closeDB(db)

	log.Info().Int("exit_code", exitCode).Msg("server shut down")
	return exitCode
}

func seedAdmins(authService *services.AuthService, cfg *config.Config) error {
	seeds, err := cfg.AdminSeeds()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(seeds) > 0 {
		converted := make([]services.SeedAdmin, 0, len(seeds))
		for _, s := range seeds {
			converted = append(converted, services.SeedAdmin{Name: s.Name, Email: s.Email, Password: s.Password})
		}

		created, err := authService.SeedAdmins(ctx, converted)
		if err != nil {
			return err
		}
		log.Info().Int("created", created).Int("configured", len(seeds)).Msg("admin seeding complete")
	}

	total, err := authService.AdminCount(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		log.Warn().Msg("no admin accounts exist; set ADMIN_EMAIL and ADMIN_PASSWORD or ADMIN_SEED_FILE")
	}
	return nil
}

func closeDB(db *database.Database) {
	if db == nil {
		return
	}
	db.Close()
	log.Info().Msg("database connection closed")
}
