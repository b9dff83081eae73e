// Package ledger is the boundary to the Algorand network: transaction
// parameter suggestion, live asset holdings, group submission, and the
// construction of atomic purchase groups.
package ledger

import (
	"context"
	"errors"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

// ErrOracleUnavailable wraps network or index failures. Callers must treat
// it as retryable and never as a negative ownership decision.
var ErrOracleUnavailable = errors.New("ledger oracle unavailable")

// ErrInvalidAddress marks a malformed wallet address in a request payload.
// It is a validation error raised before any network call.
var ErrInvalidAddress = errors.New("invalid wallet address format")

// Holding is one live asset position of a wallet.
type Holding struct {
	AssetID uint64
	Amount  uint64
}

// Oracle answers the ledger-side questions the protocol needs. Holdings are
// never cached across requests: every admission-relevant check re-queries
// live state.
type Oracle interface {
	// SuggestedParams fetches current fee and validity-window parameters.
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)

	// HoldsAsset reports whether the wallet currently holds at least one
	// unit of the asset. "Account unknown" and "zero balance" are both
	// false; transport failures wrap ErrOracleUnavailable.
	HoldsAsset(ctx context.Context, walletAddress string, assetID uint64) (bool, error)

	// ListHoldings returns the wallet's current positive asset positions.
	// An account the indexer has never seen holds nothing.
	ListHoldings(ctx context.Context, walletAddress string) ([]Holding, error)

	// SubmitGroup broadcasts the signed transactions of one atomic group
	// and returns the network transaction id.
	SubmitGroup(ctx context.Context, signedTxns [][]byte) (string, error)
}
