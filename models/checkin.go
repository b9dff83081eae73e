package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn is the durable one-time admission record. At most one row ever
// exists per (event_id, wallet_address); the store enforces this with a
// uniqueness constraint.
type CheckIn struct {
	ID            uuid.UUID `json:"id" db:"id"`
	EventID       string    `json:"event_id" db:"event_id"`
	WalletAddress string    `json:"wallet_address" db:"wallet_address"`
	CheckedInAt   time.Time `json:"checked_in_at" db:"checked_in_at"`
	ScannerLat    *float64  `json:"scanner_lat,omitempty" db:"scanner_lat"`
	ScannerLng    *float64  `json:"scanner_lng,omitempty" db:"scanner_lng"`
}
