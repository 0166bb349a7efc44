package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/application"
	"github.com/agentzerodev-lang/college-super-app-sub000/internal/config"
	httptransport "github.com/agentzerodev-lang/college-super-app-sub000/internal/http"
	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	userRepo := newUserRepositoryAdapter(sqlite.NewUserRepository(pool))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))
	walletRepo := newWalletRepositoryAdapter(sqlite.NewWalletRepository(pool))
	libraryRepo := newLibraryRepositoryAdapter(sqlite.NewLibraryRepository(pool))
	eventRepo := newEventRepositoryAdapter(sqlite.NewEventRepository(pool))
	sosRepo := newSOSRepositoryAdapter(sqlite.NewSOSRepository(pool))
	skillRepo := newSkillRepositoryAdapter(sqlite.NewSkillRepository(pool))
	roomRepo := newRoomRepositoryAdapter(sqlite.NewRoomRepository(pool))
	canteenRepo := newCanteenRepositoryAdapter(sqlite.NewCanteenRepository(pool))
	notificationRepo := newNotificationRepositoryAdapter(sqlite.NewNotificationRepository(pool))

	notificationService := application.NewNotificationServiceWithLogger(notificationRepo, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(userRepo, sessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)
	userService := application.NewUserServiceWithLogger(userRepo, nil, idGenerator, now, logger)
	walletService := application.NewWalletServiceWithLogger(walletRepo, idGenerator, now, logger)
	libraryService := application.NewLibraryServiceWithLogger(libraryRepo, libraryRepo, walletService, notificationService, idGenerator, now, logger)
	eventService := application.NewEventServiceWithLogger(eventRepo, notificationService, idGenerator, now, logger)
	sosService := application.NewSOSServiceWithLogger(sosRepo, notificationService, idGenerator, now, logger)
	leaderboardService := application.NewLeaderboardServiceWithLogger(skillRepo, userRepo, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, idGenerator, now, logger)
	canteenService := application.NewCanteenServiceWithLogger(canteenRepo, walletService, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, logger),
		Users:         httptransport.NewUserHandler(userService, logger),
		Wallets:       httptransport.NewWalletHandler(walletService, cfg.HistoryLimit, logger),
		Library:       httptransport.NewLibraryHandler(libraryService, logger),
		Events:        httptransport.NewEventHandler(eventService, logger),
		SOS:           httptransport.NewSOSHandler(sosService, logger),
		Leaderboard:   httptransport.NewLeaderboardHandler(leaderboardService, logger),
		Rooms:         httptransport.NewRoomHandler(roomService, logger),
		Canteen:       httptransport.NewCanteenHandler(canteenService, logger),
		Notifications: httptransport.NewNotificationHandler(notificationService, logger),
		Sessions:      authService,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("campus API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
