package handlers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"algogate-backend/config"
	"algogate-backend/ledger"
	"algogate-backend/metrics"
	"algogate-backend/models"
	"algogate-backend/store"
)

type TicketHandler struct {
	store  store.Store
	oracle ledger.Oracle
	cfg    config.Config
}

func NewTicketHandler(store store.Store, oracle ledger.Oracle, cfg config.Config) *TicketHandler {
	return &TicketHandler{store: store, oracle: oracle, cfg: cfg}
}

// BuyTicket builds the unsigned atomic purchase group for an event and
// returns it for wallet-side signing. Nothing is submitted here.
func (h *TicketHandler) BuyTicket(c *gin.Context) {
	var req models.BuyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Buy ticket request: wallet=%s event=%s", req.WalletAddress, req.EventID)

	event, err := h.store.SelectEvent(c, req.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		log.Printf("Failed to load event %s: %v", req.EventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	assetID := resolveAssetID(event.AssetID, h.cfg.FallbackAssetID)
	if assetID == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event ticket asset not configured", "reason": models.ReasonConfigInvalid})
		return
	}

	group, err := ledger.BuildPurchaseGroup(
		c, h.oracle,
		req.WalletAddress,
		h.cfg.OrganizerWallet,
		assetID,
		h.cfg.TicketPriceMicroAlgos,
		event.Name,
	)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
		case errors.Is(err, ledger.ErrBadOrganizerWallet):
			log.Printf("Organizer wallet misconfigured: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid organizer wallet configuration", "reason": models.ReasonConfigInvalid})
		case errors.Is(err, ledger.ErrOracleUnavailable):
			log.Printf("Ledger unavailable building purchase for %s: %v", req.EventID, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to connect to ledger network", "retryable": true})
		default:
			log.Printf("Failed to build purchase group: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction group"})
		}
		return
	}

	metrics.PurchaseGroupsBuilt.Inc()

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"txnsToSign": group.Legs,
		"group_id":   group.GroupID,
		"eventName":  event.Name,
		"price":      float64(h.cfg.TicketPriceMicroAlgos) / 1e6,
		"message":    "Transaction group created. Please sign with your wallet.",
	})
}

// ConfirmPurchase submits the signed group to the ledger and durably records
// the ticket purchase. The ledger enforces all-or-nothing confirmation of
// the group; this endpoint never sees a partial apply.
func (h *TicketHandler) ConfirmPurchase(c *gin.Context) {
	var req models.ConfirmPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.SignedTransactions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signed transactions format"})
		return
	}

	event, err := h.store.SelectEvent(c, req.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	assetID := resolveAssetID(event.AssetID, h.cfg.FallbackAssetID)
	if assetID == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event ticket asset not configured", "reason": models.ReasonConfigInvalid})
		return
	}

	signed := make([][]byte, 0, len(req.SignedTransactions))
	for _, txnB64 := range req.SignedTransactions {
		raw, err := base64.StdEncoding.DecodeString(txnB64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signed transaction encoding"})
			return
		}
		signed = append(signed, raw)
	}

	txid, err := h.oracle.SubmitGroup(c, signed)
	if err != nil {
		log.Printf("Failed to submit purchase group for %s: %v", req.EventID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to submit transaction to ledger network", "retryable": true})
		return
	}

	ticket := models.Ticket{
		ID:            uuid.New(),
		WalletAddress: req.WalletAddress,
		EventID:       req.EventID,
		AssetID:       assetID,
		TxID:          txid,
		Amount:        1,
	}
	if err := h.store.InsertTicket(c, &ticket); err != nil {
		// The ledger transaction already confirmed; losing the bookkeeping
		// row must not fail the purchase.
		log.Printf("Warning: failed to record ticket for %s/%s (txid %s): %v", req.EventID, req.WalletAddress, txid, err)
	}

	log.Printf("Purchase confirmed: wallet=%s event=%s txid=%s", req.WalletAddress, req.EventID, txid)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ticket purchase confirmed",
		"txId":    txid,
		"asaId":   assetID,
	})
}

// ListWalletTickets maps a wallet's live ledger holdings onto known events
// and annotates each with its check-in status. Ownership is read from the
// ledger, not from the bookkeeping rows, so resold or transferred tickets
// appear under their current holder.
func (h *TicketHandler) ListWalletTickets(c *gin.Context) {
	walletAddress := c.Query("address")
	if walletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wallet address is required"})
		return
	}

	events, err := h.store.ListEvents(c)
	if err != nil {
		log.Printf("Failed to list events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	holdings, err := h.oracle.ListHoldings(c, walletAddress)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
			return
		}
		log.Printf("Holdings lookup unavailable for %s: %v", walletAddress, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ledger temporarily unavailable, try again", "retryable": true})
		return
	}

	tickets := make([]models.WalletTicket, 0)
	for _, holding := range holdings {
		var match *models.Event
		for i := range events {
			if resolveAssetID(events[i].AssetID, h.cfg.FallbackAssetID) == holding.AssetID {
				match = &events[i]
				break
			}
		}
		if match == nil {
			continue
		}

		ticket := models.WalletTicket{
			Event:   *match,
			AssetID: holding.AssetID,
			Amount:  holding.Amount,
		}
		// Report the asset actually held, not a stale zero from before
		// back-fill.
		ticket.Event.AssetID = holding.AssetID

		if checkIn, err := h.store.SelectCheckIn(c, match.EventID, walletAddress); err == nil {
			ticket.Used = true
			ticket.UsedAt = &checkIn.CheckedInAt
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to query check-in for %s/%s: %v", match.EventID, walletAddress, err)
		}

		tickets = append(tickets, ticket)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"walletAddress": walletAddress,
		"tickets":       tickets,
	})
}
