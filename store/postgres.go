package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"algogate-backend/models"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SelectEvent(ctx context.Context, eventID string) (*models.Event, error) {
	query := `
		SELECT event_id, name, description, asset_id, venue_lat, venue_lng, radius_meters, organizer_wallet, created_at
		FROM events
		WHERE event_id = $1
	`

	var event models.Event
	err := s.db.QueryRow(ctx, query, eventID).Scan(
		&event.EventID,
		&event.Name,
		&event.Description,
		&event.AssetID,
		&event.VenueLat,
		&event.VenueLng,
		&event.RadiusMeters,
		&event.OrganizerWallet,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select event: %w", err)
	}
	return &event, nil
}

func (s *PostgresStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT event_id, name, description, asset_id, venue_lat, venue_lng, radius_meters, organizer_wallet, created_at
		FROM events
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(
			&event.EventID,
			&event.Name,
			&event.Description,
			&event.AssetID,
			&event.VenueLat,
			&event.VenueLng,
			&event.RadiusMeters,
			&event.OrganizerWallet,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *PostgresStore) InsertEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (event_id, name, description, asset_id, venue_lat, venue_lng, radius_meters, organizer_wallet)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := s.db.QueryRow(ctx, query,
		event.EventID,
		event.Name,
		event.Description,
		event.AssetID,
		event.VenueLat,
		event.VenueLng,
		event.RadiusMeters,
		event.OrganizerWallet,
	).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateEventAsset(ctx context.Context, eventID string, assetID uint64) error {
	tag, err := s.db.Exec(ctx, "UPDATE events SET asset_id = $1 WHERE event_id = $2", assetID, eventID)
	if err != nil {
		return fmt.Errorf("update event asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertCheckIn(ctx context.Context, checkIn *models.CheckIn) error {
	query := `
		INSERT INTO checkins (id, event_id, wallet_address, checked_in_at, scanner_lat, scanner_lng)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		checkIn.ID,
		checkIn.EventID,
		checkIn.WalletAddress,
		checkIn.CheckedInAt,
		checkIn.ScannerLat,
		checkIn.ScannerLng,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateCheckIn
		}
		return fmt.Errorf("insert check-in: %w", err)
	}
	return nil
}

func (s *PostgresStore) SelectCheckIn(ctx context.Context, eventID, walletAddress string) (*models.CheckIn, error) {
	query := `
		SELECT id, event_id, wallet_address, checked_in_at, scanner_lat, scanner_lng
		FROM checkins
		WHERE event_id = $1 AND wallet_address = $2
	`

	var checkIn models.CheckIn
	err := s.db.QueryRow(ctx, query, eventID, walletAddress).Scan(
		&checkIn.ID,
		&checkIn.EventID,
		&checkIn.WalletAddress,
		&checkIn.CheckedInAt,
		&checkIn.ScannerLat,
		&checkIn.ScannerLng,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select check-in: %w", err)
	}
	return &checkIn, nil
}

func (s *PostgresStore) ListCheckIns(ctx context.Context, eventID string) ([]models.CheckIn, error) {
	query := `
		SELECT id, event_id, wallet_address, checked_in_at, scanner_lat, scanner_lng
		FROM checkins
		WHERE event_id = $1
		ORDER BY checked_in_at DESC
	`

	rows, err := s.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []models.CheckIn
	for rows.Next() {
		var checkIn models.CheckIn
		if err := rows.Scan(
			&checkIn.ID,
			&checkIn.EventID,
			&checkIn.WalletAddress,
			&checkIn.CheckedInAt,
			&checkIn.ScannerLat,
			&checkIn.ScannerLng,
		); err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		checkIns = append(checkIns, checkIn)
	}
	return checkIns, rows.Err()
}

func (s *PostgresStore) InsertTicket(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (id, wallet_address, event_id, asset_id, txid, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := s.db.QueryRow(ctx, query,
		ticket.ID,
		ticket.WalletAddress,
		ticket.EventID,
		ticket.AssetID,
		ticket.TxID,
		ticket.Amount,
	).Scan(&ticket.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) SelectUser(ctx context.Context, walletAddress string) (*models.User, error) {
	query := `
		SELECT wallet_address, name, email, created_at
		FROM users
		WHERE wallet_address = $1
	`

	var user models.User
	err := s.db.QueryRow(ctx, query, walletAddress).Scan(
		&user.WalletAddress,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (wallet_address, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_address) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email
		RETURNING created_at
	`

	err := s.db.QueryRow(ctx, query, user.WalletAddress, user.Name, user.Email).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
