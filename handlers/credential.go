package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"algogate-backend/cache"
	"algogate-backend/config"
	"algogate-backend/credential"
	"algogate-backend/geofence"
	"algogate-backend/ledger"
	"algogate-backend/metrics"
	"algogate-backend/models"
	"algogate-backend/store"
)

type CredentialHandler struct {
	store  store.Store
	oracle ledger.Oracle
	codec  *credential.Codec
	cache  *cache.CredentialCache // nil when Redis is not configured
	cfg    config.Config
}

func NewCredentialHandler(store store.Store, oracle ledger.Oracle, codec *credential.Codec, cache *cache.CredentialCache, cfg config.Config) *CredentialHandler {
	return &CredentialHandler{
		store:  store,
		oracle: oracle,
		codec:  codec,
		cache:  cache,
		cfg:    cfg,
	}
}

// MintCredential gates on position and live ownership, then issues a
// short-lived credential. Ownership is re-checked at scan time regardless;
// the check here just avoids handing out tokens that can never admit.
func (h *CredentialHandler) MintCredential(c *gin.Context) {
	var req models.MintCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := geofence.ValidCoordinates(*req.UserLat, *req.UserLng); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user coordinates"})
		return
	}

	event, err := h.store.SelectEvent(c, req.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found", "reason": models.ReasonEventNotFound})
			return
		}
		log.Printf("Failed to load event %s: %v", req.EventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Venue geometry is operator-owned data; a broken venue is a
	// configuration error, never a geofence denial.
	if err := geofence.ValidCoordinates(event.VenueLat, event.VenueLng); err != nil {
		log.Printf("Event %s has invalid venue coordinates", event.EventID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event venue misconfigured", "reason": models.ReasonConfigInvalid})
		return
	}

	assetID := resolveAssetID(event.AssetID, h.cfg.FallbackAssetID)
	if assetID == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event ticket asset not configured", "reason": models.ReasonConfigInvalid})
		return
	}

	within, err := geofence.WithinRadius(*req.UserLat, *req.UserLng, event.VenueLat, event.VenueLng, event.RadiusMeters, h.cfg.GeofenceBufferMeters)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}
	if !within {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be at the venue to request an entry credential", "reason": models.ReasonGeofenceFailed})
		return
	}

	// Fail fast on an already-used ticket; the scan-time insert remains the
	// authoritative guard.
	if _, err := h.store.SelectCheckIn(c, req.EventID, req.WalletAddress); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket has already been used", "reason": models.ReasonAlreadyUsed})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to query check-in for %s/%s: %v", req.EventID, req.WalletAddress, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	owns, err := h.oracle.HoldsAsset(c, req.WalletAddress, assetID)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
			return
		}
		log.Printf("Ownership lookup unavailable for %s: %v", req.WalletAddress, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ledger temporarily unavailable, try again", "reason": models.ReasonOracleUnavailable, "retryable": true})
		return
	}
	if !owns {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own a valid ticket for this event", "reason": models.ReasonNotOwned})
		return
	}

	payload := h.codec.Mint(req.WalletAddress, req.EventID)

	if h.cache != nil {
		if err := h.cache.Put(c, payload); err != nil {
			log.Printf("Warning: failed to cache credential: %v", err)
		}
	}

	metrics.CredentialsMinted.Inc()
	log.Printf("Minted credential: wallet=%s event=%s expires=%d", req.WalletAddress, req.EventID, payload.Expires)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"qrPayload": payload,
	})
}
