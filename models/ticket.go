package models

import (
	"time"

	"github.com/google/uuid"
)

// Ticket records a confirmed purchase. Ownership stays authoritative on the
// ledger; this row only ties a confirmed transaction to an event for display
// and support purposes.
type Ticket struct {
	ID            uuid.UUID `json:"id" db:"id"`
	WalletAddress string    `json:"wallet_address" db:"wallet_address"`
	EventID       string    `json:"event_id" db:"event_id"`
	AssetID       uint64    `json:"asset_id" db:"asset_id"`
	TxID          string    `json:"txid" db:"txid"`
	Amount        uint64    `json:"amount" db:"amount"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// WalletTicket is one ledger-held ticket mapped onto its event, annotated
// with whether it has already been consumed at the gate.
type WalletTicket struct {
	Event   Event      `json:"event"`
	AssetID uint64     `json:"assetId"`
	Amount  uint64     `json:"amount"`
	Used    bool       `json:"used"`
	UsedAt  *time.Time `json:"usedAt,omitempty"`
}

type BuyTicketRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	EventID       string `json:"eventId" binding:"required"`
}

type ConfirmPurchaseRequest struct {
	WalletAddress      string   `json:"walletAddress" binding:"required"`
	EventID            string   `json:"eventId" binding:"required"`
	SignedTransactions []string `json:"signedTransactions" binding:"required"`
}
