package models

import (
	"time"
)

// Event describes a ticketed event. Venue coordinates and radius define the
// geofence inside which entry credentials may be minted. AssetID is the
// ledger-assigned ticket asset; it may be zero until the asset is minted and
// back-filled.
type Event struct {
	EventID         string    `json:"event_id" db:"event_id"`
	Name            string    `json:"name" db:"name"`
	Description     *string   `json:"description,omitempty" db:"description"`
	AssetID         uint64    `json:"asset_id" db:"asset_id"`
	VenueLat        float64   `json:"venue_lat" db:"venue_lat"`
	VenueLng        float64   `json:"venue_lng" db:"venue_lng"`
	RadiusMeters    float64   `json:"radius_meters" db:"radius_meters"`
	OrganizerWallet string    `json:"organizer_wallet" db:"organizer_wallet"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type CreateEventRequest struct {
	EventID         string   `json:"event_id" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	AssetID         uint64   `json:"asset_id"`
	VenueLat        *float64 `json:"venue_lat" binding:"required"`
	VenueLng        *float64 `json:"venue_lng" binding:"required"`
	RadiusMeters    float64  `json:"radius_meters" binding:"required"`
	OrganizerWallet string   `json:"organizer_wallet" binding:"required"`
}

type UpdateEventAssetRequest struct {
	AssetID uint64 `json:"asset_id" binding:"required"`
}
