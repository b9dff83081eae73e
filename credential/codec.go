// Package credential mints and validates short-lived entry credentials. A
// credential binds a wallet and event to a coarse time slot with a keyed
// HMAC, so small clock differences between mint and scan do not invalidate
// it, while forging a token for a future slot requires the server secret.
package credential

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"algogate-backend/models"
)

// Codec holds the server-side secret and the validity window. The secret is
// never exposed to clients.
type Codec struct {
	secret   []byte
	windowMS int64
	now      func() time.Time
}

func NewCodec(secret string, windowMillis int64) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("credential secret must not be empty")
	}
	if windowMillis <= 0 {
		return nil, fmt.Errorf("credential window must be positive, got %d", windowMillis)
	}
	return &Codec{
		secret:   []byte(secret),
		windowMS: windowMillis,
		now:      time.Now,
	}, nil
}

// Mint issues a credential that expires one window from now.
func (c *Codec) Mint(walletAddress, eventID string) models.CredentialPayload {
	expires := c.now().UnixMilli() + c.windowMS
	slot := expires / c.windowMS
	return models.CredentialPayload{
		WalletAddress: walletAddress,
		EventID:       eventID,
		Token:         c.expectedToken(walletAddress, eventID, slot),
		Expires:       expires,
	}
}

// Validate checks expiry and token authenticity. The slot is recomputed from
// the presented expiry, not wall-clock time, so a credential scanned shortly
// after minting stays valid across the slot boundary. Expired, malformed,
// and forged payloads are all just "false"; callers must not distinguish
// them externally.
func (c *Codec) Validate(p models.CredentialPayload) bool {
	if p.WalletAddress == "" || p.EventID == "" || p.Token == "" {
		return false
	}
	if c.now().UnixMilli() > p.Expires {
		return false
	}

	presented, err := hex.DecodeString(p.Token)
	if err != nil {
		return false
	}

	slot := p.Expires / c.windowMS
	expected, err := hex.DecodeString(c.expectedToken(p.WalletAddress, p.EventID, slot))
	if err != nil {
		return false
	}
	return hmac.Equal(presented, expected)
}

// expectedToken is the single digest construction shared by Mint and
// Validate.
func (c *Codec) expectedToken(walletAddress, eventID string, slot int64) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(walletAddress + ":" + eventID + ":" + strconv.FormatInt(slot, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
