// Package store is the persistence boundary. The uniqueness constraint on
// check-ins lives here: InsertCheckIn is the race-proofing mechanism for
// one-time admission, not any read that precedes it.
package store

import (
	"context"
	"errors"

	"algogate-backend/models"
)

// ErrNotFound is returned when a selected row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateCheckIn is returned when the (event, wallet) check-in slot is
// already taken. Losing this race is a business outcome ("already used"),
// never a server error.
var ErrDuplicateCheckIn = errors.New("check-in already recorded")

type Store interface {
	SelectEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	InsertEvent(ctx context.Context, event *models.Event) error
	UpdateEventAsset(ctx context.Context, eventID string, assetID uint64) error

	// InsertCheckIn durably records a one-time admission. Returns
	// ErrDuplicateCheckIn if a row for (event, wallet) already exists; the
	// insert and the constraint check are one atomic unit at the store.
	InsertCheckIn(ctx context.Context, checkIn *models.CheckIn) error
	SelectCheckIn(ctx context.Context, eventID, walletAddress string) (*models.CheckIn, error)
	ListCheckIns(ctx context.Context, eventID string) ([]models.CheckIn, error)

	InsertTicket(ctx context.Context, ticket *models.Ticket) error

	SelectUser(ctx context.Context, walletAddress string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
}
