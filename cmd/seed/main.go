package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/config"
	"github.com/aihotel/hotel-api/internal/domain/booking"
	"github.com/aihotel/hotel-api/internal/domain/room"
	"github.com/aihotel/hotel-api/internal/domain/user"
	"github.com/aihotel/hotel-api/internal/pkg/database"
	"github.com/aihotel/hotel-api/internal/pkg/logger"
	"github.com/aihotel/hotel-api/internal/pkg/password"
)

func main() {
	adminEmail := flag.String("admin-email", "admin@aihotel.local", "admin account email")
	adminPassword := flag.String("admin-password", "admin123", "admin account password")
	guestEmail := flag.String("guest-email", "guest@aihotel.local", "guest account email")
	guestPassword := flag.String("guest-password", "guest123", "guest account password")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for synthetic reservations")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	log.Info().Msg("Clearing old data...")
	if _, err := db.ExecContext(ctx, `TRUNCATE chat_logs, reservations, rooms, users`); err != nil {
		log.Fatal().Err(err).Msg("Failed to clear tables")
	}

	admin, err := createUser(ctx, user.NewRepository(db), "Hotel Admin", *adminEmail, *adminPassword, user.RoleAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}
	guest, err := createUser(ctx, user.NewRepository(db), "", *guestEmail, *guestPassword, user.RoleGuest)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create guest")
	}

	rooms := catalog()
	roomRepo := room.NewRepository(db)
	for _, rm := range rooms {
		if err := roomRepo.Create(ctx, rm); err != nil {
			log.Fatal().Err(err).Str("room", rm.RoomNumber).Msg("Failed to create room")
		}
	}

	rng := rand.New(rand.NewPCG(*seed, *seed>>1))
	reservations := planReservations(rooms, guest, time.Now(), rng)
	if err := insertReservations(ctx, db, reservations); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert reservations")
	}

	fixed, err := booking.NewRepository(db).ReconcileAvailability(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to reconcile room availability")
	}

	log.Info().
		Int("rooms", len(rooms)).
		Int("reservations", len(reservations)).
		Int64("flags_updated", fixed).
		Str("admin", admin.Email).
		Str("guest", guest.Email).
		Uint64("seed", *seed).
		Msg("Database seeded successfully")
}

func createUser(ctx context.Context, repo user.Repository, name, email, pw string, role user.Role) (*user.User, error) {
	if name == "" {
		name = user.NameFromEmail(email)
	}
	u := user.New(name, email)
	u.Role = role
	u.IsVerified = true

	hash, err := password.Hash(pw)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	if err := repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func insertReservations(ctx context.Context, db *sqlx.DB, reservations []*booking.Reservation) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range reservations {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO reservations (id, user_id, guest_name, guest_email, room_id, check_in, check_out, status, booking_date, updated_at)
			VALUES (:id, :user_id, :guest_name, :guest_email, :room_id, :check_in, :check_out, :status, :booking_date, :booking_date)
		`, r)
		if err != nil {
			return fmt.Errorf("insert reservation %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
