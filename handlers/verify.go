package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"algogate-backend/cache"
	"algogate-backend/config"
	"algogate-backend/credential"
	"algogate-backend/ledger"
	"algogate-backend/metrics"
	"algogate-backend/models"
	"algogate-backend/queue"
	"algogate-backend/store"
)

// VerifyHandler runs the gate-side verification sequence: structure, codec,
// prior use, live ownership, then the transactional check-in insert. The
// first failing check decides the denial; the insert's uniqueness constraint
// is the real one-admission guarantee.
type VerifyHandler struct {
	store     store.Store
	oracle    ledger.Oracle
	codec     *credential.Codec
	cache     *cache.CredentialCache // nil when Redis is not configured
	publisher queue.Publisher        // nil when RabbitMQ is not configured
	cfg       config.Config
}

func NewVerifyHandler(store store.Store, oracle ledger.Oracle, codec *credential.Codec, cache *cache.CredentialCache, publisher queue.Publisher, cfg config.Config) *VerifyHandler {
	return &VerifyHandler{
		store:     store,
		oracle:    oracle,
		codec:     codec,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (h *VerifyHandler) VerifyCredential(c *gin.Context) {
	var req models.VerifyCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"admitted": false, "error": "Invalid credential format"})
		return
	}

	payload := req.Credential
	if payload.WalletAddress == "" || payload.EventID == "" || payload.Token == "" || payload.Expires == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"admitted": false, "error": "Invalid credential format"})
		return
	}

	// Expired and forged deliberately share one response so the interface
	// cannot be used as a forgery oracle.
	if !h.codec.Validate(payload) {
		h.deny(c, models.ReasonExpiredOrInvalid, "Credential has expired or is invalid")
		return
	}

	event, err := h.store.SelectEvent(c, payload.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.deny(c, models.ReasonEventNotFound, "Event not found")
			return
		}
		log.Printf("Failed to load event %s: %v", payload.EventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"admitted": false, "error": "Database error"})
		return
	}

	// Fast path only; the insert below is what actually prevents doubles.
	if _, err := h.store.SelectCheckIn(c, payload.EventID, payload.WalletAddress); err == nil {
		h.deny(c, models.ReasonAlreadyUsed, "Ticket has already been used")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to query check-in for %s/%s: %v", payload.EventID, payload.WalletAddress, err)
		c.JSON(http.StatusInternalServerError, gin.H{"admitted": false, "error": "Database error"})
		return
	}

	// Anti-resale: ownership at scan time is authoritative, not ownership
	// at mint time. An unreachable oracle fails closed as "try again",
	// never as a denial of ownership.
	assetID := resolveAssetID(event.AssetID, h.cfg.FallbackAssetID)
	if assetID == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"admitted": false, "error": "Event ticket asset not configured", "reason": models.ReasonConfigInvalid})
		return
	}
	owns, err := h.oracle.HoldsAsset(c, payload.WalletAddress, assetID)
	if err != nil {
		log.Printf("Ownership re-check unavailable for %s: %v", payload.WalletAddress, err)
		metrics.Admissions.WithLabelValues("unavailable").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"admitted":  false,
			"reason":    models.ReasonOracleUnavailable,
			"error":     "Ledger temporarily unavailable, try again",
			"retryable": true,
		})
		return
	}
	if !owns {
		h.deny(c, models.ReasonNotOwned, "Ticket is no longer owned by this wallet")
		return
	}

	checkIn := models.CheckIn{
		ID:            uuid.New(),
		EventID:       payload.EventID,
		WalletAddress: payload.WalletAddress,
		CheckedInAt:   time.Now(),
		ScannerLat:    req.ScannerLat,
		ScannerLng:    req.ScannerLng,
	}
	if err := h.store.InsertCheckIn(c, &checkIn); err != nil {
		if errors.Is(err, store.ErrDuplicateCheckIn) {
			// Lost the race to a concurrent scan of the same credential.
			h.deny(c, models.ReasonAlreadyUsed, "Ticket has already been used")
			return
		}
		log.Printf("Failed to record check-in for %s/%s: %v", payload.EventID, payload.WalletAddress, err)
		c.JSON(http.StatusInternalServerError, gin.H{"admitted": false, "error": "Failed to process check-in"})
		return
	}

	// Everything past the insert is best-effort.
	if h.cache != nil {
		if err := h.cache.Delete(c, payload.Token); err != nil {
			log.Printf("Warning: failed to delete cached credential: %v", err)
		}
	}
	if h.publisher != nil {
		if err := h.publisher.PublishCheckIn(c, queue.CheckInEvent{
			EventID:       checkIn.EventID,
			WalletAddress: checkIn.WalletAddress,
			CheckedInAt:   checkIn.CheckedInAt,
		}); err != nil {
			log.Printf("Warning: failed to publish check-in event: %v", err)
		}
	}
	metrics.Admissions.WithLabelValues("admitted").Inc()

	log.Printf("Admitted: wallet=%s event=%s", payload.WalletAddress, payload.EventID)

	c.JSON(http.StatusOK, models.VerifyCredentialResponse{
		Admitted: true,
		Holder:   h.holderInfo(c, payload.WalletAddress),
		Event: &models.EventInfo{
			Name:        event.Name,
			Description: event.Description,
		},
	})
}

func (h *VerifyHandler) GetCheckins(c *gin.Context) {
	eventID := c.Param("id")

	if _, err := h.store.SelectEvent(c, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	checkIns, err := h.store.ListCheckIns(c, eventID)
	if err != nil {
		log.Printf("Failed to list check-ins for %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkins": checkIns, "count": len(checkIns)})
}

func (h *VerifyHandler) deny(c *gin.Context, reason, message string) {
	metrics.Admissions.WithLabelValues("denied").Inc()
	c.JSON(http.StatusOK, gin.H{
		"admitted": false,
		"reason":   reason,
		"error":    message,
	})
}

// holderInfo fetches display metadata for gate staff; an unknown wallet gets
// a truncated-address placeholder.
func (h *VerifyHandler) holderInfo(c *gin.Context, walletAddress string) *models.HolderInfo {
	user, err := h.store.SelectUser(c, walletAddress)
	if err != nil {
		short := walletAddress
		if len(short) > 8 {
			short = short[:8]
		}
		return &models.HolderInfo{
			WalletAddress: walletAddress,
			Name:          fmt.Sprintf("User %s...", short),
		}
	}
	return &models.HolderInfo{
		WalletAddress: user.WalletAddress,
		Name:          user.Name,
	}
}
