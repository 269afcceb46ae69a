package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/config"
	"github.com/aihotel/hotel-api/internal/domain/auth"
	"github.com/aihotel/hotel-api/internal/domain/booking"
	"github.com/aihotel/hotel-api/internal/domain/concierge"
	"github.com/aihotel/hotel-api/internal/domain/dashboard"
	"github.com/aihotel/hotel-api/internal/domain/room"
	"github.com/aihotel/hotel-api/internal/domain/user"
	"github.com/aihotel/hotel-api/internal/middleware"
	"github.com/aihotel/hotel-api/internal/pkg/aiclient"
	"github.com/aihotel/hotel-api/internal/pkg/database"
	"github.com/aihotel/hotel-api/internal/pkg/email"
	"github.com/aihotel/hotel-api/internal/pkg/events"
	"github.com/aihotel/hotel-api/internal/pkg/imaging"
	"github.com/aihotel/hotel-api/internal/pkg/jwt"
	"github.com/aihotel/hotel-api/internal/pkg/logger"
	"github.com/aihotel/hotel-api/internal/pkg/oauth"
	pkgresponse "github.com/aihotel/hotel-api/internal/pkg/response"
	"github.com/aihotel/hotel-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Hotel API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	if err := database.Migrate(migrateCtx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
	cancelMigrate()

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.MagicLinkTTL)
	aiClient := aiclient.NewClient(cfg.AIServiceURL, cfg.AIServiceToken, cfg.AITimeout)

	// ---------- Infrastructure ----------
	fileStorage, err := storage.New(context.Background(), storage.Config{
		S3Endpoint:   cfg.S3Endpoint,
		S3Region:     cfg.S3Region,
		S3Bucket:     cfg.S3Bucket,
		S3AccessKey:  cfg.S3AccessKey,
		S3SecretKey:  cfg.S3SecretKey,
		S3PublicURL:  cfg.S3PublicURL,
		LocalDir:     cfg.UploadDir,
		LocalBaseURL: cfg.BackendURL + "/uploads",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage")
	}

	var mailClient email.Client = email.NoopClient{}
	if cfg.SMTPEnabled() {
		smtpClient, err := email.NewSMTPClient(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create SMTP client")
		}
		mailClient = smtpClient
	}
	emailService := email.NewService(mailClient, cfg.SMTPFromName)
	defer emailService.Close()

	var publisher booking.EventPublisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		p := events.NewPublisher(cfg.RabbitMQURL)
		defer p.Close()
		publisher = p
	}

	var google auth.GoogleProvider
	if cfg.GoogleOAuthEnabled() {
		google = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	roomRepo := room.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	dashboardRepo := dashboard.NewRepository(db)
	chatLogRepo := concierge.NewRepository(db)

	// ---------- Services ----------
	var negotiations booking.NegotiationStore
	var memoryNegotiations *booking.MemoryNegotiationStore
	if redis != nil {
		negotiations = booking.NewRedisNegotiationStore(redis, cfg.NegotiationTTL)
	} else {
		memoryNegotiations = booking.NewMemoryNegotiationStore(cfg.NegotiationTTL)
		negotiations = memoryNegotiations
	}

	authService := auth.NewService(userRepo, jwtService, redis, emailService, google, cfg.FrontendURL)
	userService := user.NewService(userRepo)
	roomService := room.NewService(roomRepo, fileStorage, imaging.NewProcessor(imaging.DefaultConfig()))
	bookingService := booking.NewService(
		bookingRepo,
		roomRepo,
		&guestDirectory{repo: userRepo},
		negotiations,
		&aiRecommender{client: aiClient},
		publisher,
		booking.Config{CancellationWindow: cfg.CancellationWindow},
	)
	dashboardService := dashboard.NewService(dashboardRepo, aiClient, redis)
	retrainer := dashboard.NewRetrainer(cfg.AIRetrainCommand, cfg.AIRetrainDir)
	conciergeService := concierge.NewService(chatLogRepo, aiClient)

	// ---------- Background jobs ----------
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if _, err := booking.NewReconcileJob(bookingRepo, memoryNegotiations).Schedule(scheduler, cfg.ReconcileInterval); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule availability reconciliation")
	}
	if cfg.AIRetrainCron != "" {
		if _, err := retrainer.Schedule(scheduler, cfg.AIRetrainCron); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.AIRetrainCron).Msg("Failed to schedule model retraining")
		}
	}
	scheduler.Start()

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	roomHandler := room.NewHandler(roomService)
	bookingHandler := booking.NewHandler(bookingService)
	dashboardHandler := dashboard.NewHandler(dashboardService, retrainer)
	conciergeHandler := concierge.NewHandler(
		conciergeService,
		concierge.NewRateLimiter(redis, 20, time.Minute),
		cfg.AllowedOrigins,
	)

	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	if local, ok := fileStorage.(*storage.LocalStorage); ok {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.BasePath()))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/users", userHandler.Routes(authMiddleware))
		mountRoomRoutes(r, roomHandler.Routes(), bookingHandler.DisabledDates)
		r.Mount("/availability", bookingHandler.AvailabilityRoutes())
		r.Mount("/bookings", bookingHandler.Routes(authMiddleware))
		r.Mount("/concierge", conciergeHandler.Routes(optionalAuth))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin())

		r.Mount("/rooms", roomHandler.AdminRoutes())
		r.Mount("/bookings", bookingHandler.AdminRoutes())
		r.Mount("/users", userHandler.AdminRoutes())
		r.Mount("/dashboard", dashboardHandler.AdminRoutes())
		r.Mount("/ai", dashboardHandler.AIRoutes())
		r.Mount("/chat-logs", conciergeHandler.AdminRoutes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Scheduler shutdown failed")
	}

	log.Info().Msg("Server exited properly")
}

// mountRoomRoutes mounts the public catalog and attaches the per-room
// disabled-dates lookup owned by the booking slice
func mountRoomRoutes(r chi.Router, rooms chi.Router, disabledDates http.HandlerFunc) {
	rooms.Get("/{id}/disabled-dates", disabledDates)
	r.Mount("/rooms", rooms)
}

// Adapter implementations to bridge interface mismatches

// guestDirectory adapts user.Repository to booking.GuestDirectory
type guestDirectory struct {
	repo user.Repository
}

func (g *guestDirectory) GetGuest(ctx context.Context, userID uuid.UUID) (*booking.Guest, error) {
	u, err := g.repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	return &booking.Guest{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Preferences: booking.Preferences{
			PreferredFloor: u.PreferredFloor,
			RoomLocation:   u.RoomLocation,
			Interests:      []string(u.Interests),
		},
	}, nil
}

// aiRecommender adapts the smart-assign endpoint to booking.Recommender
type aiRecommender struct {
	client *aiclient.Client
}

func (a *aiRecommender) Recommend(ctx context.Context, available, all []*room.Room, prefs *booking.Preferences) (uuid.UUID, bool) {
	var aiPrefs *aiclient.Preferences
	if prefs != nil {
		aiPrefs = &aiclient.Preferences{
			PreferredFloor: prefs.PreferredFloor,
			RoomLocation:   prefs.RoomLocation,
			Interests:      prefs.Interests,
		}
	}

	best, err := a.client.SmartAssign(ctx, toAIRooms(available), toAIRooms(all), aiPrefs)
	if err != nil {
		log.Warn().Err(err).Msg("Smart assignment unavailable")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(best)
	if err != nil {
		log.Warn().Str("best_room_id", best).Msg("Smart assignment returned an unknown room id")
		return uuid.Nil, false
	}
	return id, true
}

func toAIRooms(rooms []*room.Room) []aiclient.Room {
	out := make([]aiclient.Room, len(rooms))
	for i, rm := range rooms {
		out[i] = aiclient.Room{
			ID:          rm.ID.String(),
			RoomNumber:  rm.RoomNumber,
			Type:        string(rm.Type),
			Price:       rm.Price,
			IsAvailable: rm.IsAvailable,
		}
	}
	return out
}
