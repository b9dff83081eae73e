package ledger

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// ErrBadOrganizerWallet marks a misconfigured organizer address. Unlike a
// bad buyer address this is an operator problem, not a per-request failure.
var ErrBadOrganizerWallet = errors.New("organizer wallet misconfigured")

// ParamsSource is the single external suspension point of the builder.
type ParamsSource interface {
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
}

// TxnToSign is one unsigned leg of the purchase group, msgpack-encoded and
// base64-wrapped for transport, tagged with the wallet expected to sign it.
type TxnToSign struct {
	Txn     string   `json:"txn"`
	Signers []string `json:"signers"`
}

// PurchaseGroup is an unsigned two-party atomic group: a payment leg from
// buyer to organizer followed by a one-unit ticket-asset transfer back. The
// ledger commits both or neither. The service never signs either leg.
type PurchaseGroup struct {
	Legs    []TxnToSign `json:"txnsToSign"`
	GroupID string      `json:"group_id"`
}

// BuildPurchaseGroup constructs the atomic group. Leg order is fixed
// (payment first, asset transfer second); the group digest is computed over
// the ordered set, so reordering or mutating a leg after grouping breaks the
// group identity.
func BuildPurchaseGroup(
	ctx context.Context,
	params ParamsSource,
	buyerWallet string,
	organizerWallet string,
	assetID uint64,
	priceMicroAlgos uint64,
	eventName string,
) (*PurchaseGroup, error) {
	if _, err := types.DecodeAddress(buyerWallet); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, buyerWallet)
	}
	if _, err := types.DecodeAddress(organizerWallet); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadOrganizerWallet, organizerWallet)
	}
	if assetID == 0 {
		return nil, fmt.Errorf("%w: missing ticket asset id", ErrBadOrganizerWallet)
	}

	sp, err := params.SuggestedParams(ctx)
	if err != nil {
		return nil, err
	}

	paymentTxn, err := transaction.MakePaymentTxn(
		buyerWallet,
		organizerWallet,
		priceMicroAlgos,
		[]byte(fmt.Sprintf("Payment for %s ticket", eventName)),
		"",
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment transaction: %w", err)
	}

	assetTxn, err := transaction.MakeAssetTransferTxn(
		organizerWallet,
		buyerWallet,
		1,
		[]byte(fmt.Sprintf("Ticket for %s", eventName)),
		sp,
		"",
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset transfer transaction: %w", err)
	}

	grouped, err := transaction.AssignGroupID([]types.Transaction{paymentTxn, assetTxn}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to group transactions: %w", err)
	}

	return &PurchaseGroup{
		Legs: []TxnToSign{
			{
				Txn:     base64.StdEncoding.EncodeToString(msgpack.Encode(&grouped[0])),
				Signers: []string{buyerWallet},
			},
			{
				Txn:     base64.StdEncoding.EncodeToString(msgpack.Encode(&grouped[1])),
				Signers: []string{organizerWallet},
			},
		},
		GroupID: base64.StdEncoding.EncodeToString(grouped[0].Group[:]),
	}, nil
}
