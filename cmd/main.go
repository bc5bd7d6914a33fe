package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raceclub/portal/config"
	"github.com/raceclub/portal/db"
	_ "github.com/raceclub/portal/docs"
	"github.com/raceclub/portal/handlers"
	"github.com/raceclub/portal/live"
	"github.com/raceclub/portal/repositories"
	"github.com/raceclub/portal/routes"
	"github.com/raceclub/portal/services"
	"github.com/raceclub/portal/storage"
)

// @title Race Club Portal API
// @version 1.0
// @description Membership, events and nomination API for racing clubs.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("database connection established")

	uploader, err := storage.NewR2Uploader(storage.R2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2Bucket,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to init object storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	hub := live.NewHub(logger)
	go hub.Run()

	userRepo := repositories.NewPostgresUserRepository(conn)
	clubRepo := repositories.NewPostgresClubRepository(conn)
	trackRepo := repositories.NewPostgresTrackRepository(conn)
	membershipRepo := repositories.NewPostgresMembershipRepository(conn)
	driverRepo := repositories.NewPostgresDriverRepository(conn)
	eventRepo := repositories.NewPostgresEventRepository(conn)
	eventClassRepo := repositories.NewPostgresEventClassRepository(conn)
	nominationRepo := repositories.NewPostgresNominationRepository(conn)
	championshipRepo := repositories.NewPostgresChampionshipRepository(conn)

	authService := services.NewAuthService(userRepo, driverRepo, cfg.JWTSecret)
	membershipService := services.NewMembershipService(membershipRepo, logger)
	driverService := services.NewDriverService(driverRepo, membershipService)
	clubService := services.NewClubService(clubRepo, trackRepo, uploader, logger)
	eventService := services.NewEventService(eventRepo, eventClassRepo, trackRepo, uploader, hub, logger)
	sessionService := services.NewSessionService(membershipService, driverService)
	nominationService := services.NewNominationService(nominationRepo, eventRepo, eventClassRepo, driverRepo, hub, logger)
	championshipService := services.NewChampionshipService(championshipRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runPhaseScheduler(ctx, clubRepo, eventService, logger)

	router := routes.SetupRoutes(routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Club:         handlers.NewClubHandler(clubService),
		Event:        handlers.NewEventHandler(eventService, clubService),
		Membership:   handlers.NewMembershipHandler(membershipService),
		Session:      handlers.NewSessionHandler(sessionService),
		Driver:       handlers.NewDriverHandler(driverService),
		Nomination:   handlers.NewNominationHandler(nominationService, membershipService),
		Championship: handlers.NewChampionshipHandler(championshipService, clubService),
		WebSocket:    handlers.NewWebSocketHandler(hub, logger),
	}, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		logger.Info("server starting", slog.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// runPhaseScheduler periodically recomputes each club's event
// nomination phases so window transitions are broadcast even when no
// admin touches the event.
func runPhaseScheduler(ctx context.Context, clubRepo repositories.ClubRepository, eventService *services.EventService, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			clubs, err := clubRepo.List(ctx)
			if err != nil {
				logger.Error("phase scheduler: failed to list clubs", slog.String("error", err.Error()))
				continue
			}
			for _, club := range clubs {
				if err := eventService.AutoUpdateNominationPhases(ctx, club.ID); err != nil {
					logger.Error("phase scheduler: update failed",
						slog.Int("club_id", club.ID),
						slog.String("error", err.Error()))
				}
			}
		}
	}
}
