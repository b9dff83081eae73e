package models

// Machine-readable denial reasons returned by the credential mint and
// verification endpoints. Expired and forged credentials deliberately share
// one reason so the interface leaks nothing about which check failed.
const (
	ReasonGeofenceFailed    = "GEOFENCE_FAILED"
	ReasonNotOwned          = "NOT_OWNED"
	ReasonEventNotFound     = "EVENT_NOT_FOUND"
	ReasonAlreadyUsed       = "ALREADY_USED"
	ReasonConfigInvalid     = "CONFIG_INVALID"
	ReasonExpiredOrInvalid  = "EXPIRED_OR_INVALID"
	ReasonOracleUnavailable = "ORACLE_UNAVAILABLE"
)

type MintCredentialRequest struct {
	WalletAddress string   `json:"walletAddress" binding:"required"`
	EventID       string   `json:"eventId" binding:"required"`
	UserLat       *float64 `json:"userLat" binding:"required"`
	UserLng       *float64 `json:"userLng" binding:"required"`
}

// CredentialPayload is the wire form of an entry credential, carried inside
// the QR image presented at the gate.
type CredentialPayload struct {
	WalletAddress string `json:"walletAddress"`
	EventID       string `json:"eventId"`
	Token         string `json:"token"`
	Expires       int64  `json:"expires"`
}

type VerifyCredentialRequest struct {
	Credential CredentialPayload `json:"credential" binding:"required"`
	ScannerLat *float64          `json:"scannerLat"`
	ScannerLng *float64          `json:"scannerLng"`
}

// HolderInfo is the display metadata shown to gate staff on admission.
type HolderInfo struct {
	WalletAddress string `json:"wallet_address"`
	Name          string `json:"name"`
}

type VerifyCredentialResponse struct {
	Admitted bool        `json:"admitted"`
	Reason   string      `json:"reason,omitempty"`
	Holder   *HolderInfo `json:"holder,omitempty"`
	Event    *EventInfo  `json:"event,omitempty"`
}

type EventInfo struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}
