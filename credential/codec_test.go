package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"algogate-backend/models"
)

const testSecret = "unit-test-secret"

func newTestCodec(t *testing.T, windowMillis int64) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, windowMillis)
	require.NoError(t, err)
	return c
}

func TestNewCodecRejectsBadInputs(t *testing.T) {
	_, err := NewCodec("", 20000)
	assert.Error(t, err)

	_, err = NewCodec(testSecret, 0)
	assert.Error(t, err)

	_, err = NewCodec(testSecret, -1)
	assert.Error(t, err)
}

func TestMintThenValidate(t *testing.T) {
	for _, window := range []int64{1000, 20000, 60000} {
		c := newTestCodec(t, window)
		p := c.Mint("WALLET_A", "event-1")
		assert.True(t, c.Validate(p), "window=%d", window)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	c := newTestCodec(t, 20000)
	p := c.Mint("WALLET_A", "event-1")

	c.now = func() time.Time { return time.UnixMilli(p.Expires + 1) }
	assert.False(t, c.Validate(p))
}

func TestValidateAcceptsWithinWindow(t *testing.T) {
	c := newTestCodec(t, 20000)
	p := c.Mint("WALLET_A", "event-1")

	// Just before expiry, even if the wall clock crossed a slot boundary
	// since minting: the slot comes from the presented expiry.
	c.now = func() time.Time { return time.UnixMilli(p.Expires - 1) }
	assert.True(t, c.Validate(p))
}

func TestValidateRejectsTamperedFields(t *testing.T) {
	c := newTestCodec(t, 20000)
	base := c.Mint("WALLET_A", "event-1")

	tamper := func(mutate func(*models.CredentialPayload)) models.CredentialPayload {
		p := base
		mutate(&p)
		return p
	}

	assert.False(t, c.Validate(tamper(func(p *models.CredentialPayload) { p.WalletAddress = "WALLET_B" })))
	assert.False(t, c.Validate(tamper(func(p *models.CredentialPayload) { p.EventID = "event-2" })))
	assert.False(t, c.Validate(tamper(func(p *models.CredentialPayload) { p.Token = p.Token[1:] + "0" })))
	// Pushing the expiry into the next slot changes the expected digest.
	assert.False(t, c.Validate(tamper(func(p *models.CredentialPayload) { p.Expires += 20000 })))
}

func TestValidateRejectsMalformedPayloads(t *testing.T) {
	c := newTestCodec(t, 20000)
	p := c.Mint("WALLET_A", "event-1")

	assert.False(t, c.Validate(models.CredentialPayload{}))
	assert.False(t, c.Validate(models.CredentialPayload{WalletAddress: "W", EventID: "e", Token: "not-hex!", Expires: p.Expires}))
	assert.False(t, c.Validate(models.CredentialPayload{WalletAddress: "W", EventID: "e", Expires: p.Expires}))
}

func TestTokenDeterministicPerSlot(t *testing.T) {
	c := newTestCodec(t, 20000)
	fixed := time.UnixMilli(1_700_000_000_000)
	c.now = func() time.Time { return fixed }

	p1 := c.Mint("WALLET_A", "event-1")
	p2 := c.Mint("WALLET_A", "event-1")
	assert.Equal(t, p1.Token, p2.Token, "same slot mints the same digest")

	other := c.Mint("WALLET_A", "event-2")
	assert.NotEqual(t, p1.Token, other.Token)
}

func TestSecretChangesToken(t *testing.T) {
	c1 := newTestCodec(t, 20000)
	c2, err := NewCodec("another-secret", 20000)
	require.NoError(t, err)

	p := c1.Mint("WALLET_A", "event-1")
	assert.False(t, c2.Validate(p))
}
