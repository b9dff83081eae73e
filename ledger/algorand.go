package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// AlgorandOracle implements Oracle against an algod node (parameters,
// submission) and an indexer (holdings read path).
type AlgorandOracle struct {
	algod   *algod.Client
	indexer *indexer.Client
	timeout time.Duration
}

func NewAlgorandOracle(algodURL, algodToken, indexerURL string, timeout time.Duration) (*AlgorandOracle, error) {
	algodClient, err := algod.MakeClient(algodURL, algodToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create algod client: %w", err)
	}

	indexerClient, err := indexer.MakeClient(indexerURL, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer client: %w", err)
	}

	return &AlgorandOracle{
		algod:   algodClient,
		indexer: indexerClient,
		timeout: timeout,
	}, nil
}

func (o *AlgorandOracle) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	params, err := o.algod.SuggestedParams().Do(ctx)
	if err != nil {
		return types.SuggestedParams{}, fmt.Errorf("%w: suggested params: %v", ErrOracleUnavailable, err)
	}
	return params, nil
}

func (o *AlgorandOracle) HoldsAsset(ctx context.Context, walletAddress string, assetID uint64) (bool, error) {
	holdings, err := o.ListHoldings(ctx, walletAddress)
	if err != nil {
		return false, err
	}
	for _, holding := range holdings {
		if holding.AssetID == assetID {
			return true, nil
		}
	}
	return false, nil
}

func (o *AlgorandOracle) ListHoldings(ctx context.Context, walletAddress string) ([]Holding, error) {
	if _, err := types.DecodeAddress(walletAddress); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, walletAddress)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	_, account, err := o.indexer.LookupAccountByID(walletAddress).Do(ctx)
	if err != nil {
		// An address the indexer has never seen holds nothing; that is a
		// business answer, not an oracle failure.
		if isAccountNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: account lookup: %v", ErrOracleUnavailable, err)
	}

	var holdings []Holding
	for _, holding := range account.Assets {
		if holding.Amount > 0 && !holding.Deleted {
			holdings = append(holdings, Holding{AssetID: holding.AssetId, Amount: holding.Amount})
		}
	}
	return holdings, nil
}

func (o *AlgorandOracle) SubmitGroup(ctx context.Context, signedTxns [][]byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// Grouped transactions are submitted as one concatenated blob.
	var raw []byte
	for _, stx := range signedTxns {
		raw = append(raw, stx...)
	}

	txid, err := o.algod.SendRawTransaction(raw).Do(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: send raw transaction: %v", ErrOracleUnavailable, err)
	}

	// Confirmation is best-effort; the group is already in the mempool and
	// a slow round must not fail the purchase.
	if _, err := transaction.WaitForConfirmation(o.algod, txid, 4, ctx); err != nil {
		log.Printf("Warning: confirmation wait for %s did not complete: %v", txid, err)
	}

	return txid, nil
}

// isAccountNotFound matches the indexer's 404 for an address it has never
// seen. The SDK renders HTTP failures as "HTTP <code>: <body>", so only a
// leading 404 status or the indexer's not-found message qualifies; a
// transport error that merely mentions 404 somewhere does not.
func isAccountNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.HasPrefix(msg, "http 404") || strings.Contains(msg, "no accounts found")
}
