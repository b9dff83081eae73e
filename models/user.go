package models

import (
	"time"
)

// User is a wallet-keyed profile used for holder display at the gate.
type User struct {
	WalletAddress string    `json:"wallet_address" db:"wallet_address"`
	Name          string    `json:"name" db:"name"`
	Email         *string   `json:"email,omitempty" db:"email"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type UpsertUserRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email"`
}
