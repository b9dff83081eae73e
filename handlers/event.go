package handlers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"algogate-backend/config"
	"algogate-backend/geofence"
	"algogate-backend/models"
	"algogate-backend/store"
)

type EventHandler struct {
	store store.Store
	cfg   config.Config
}

func NewEventHandler(store store.Store, cfg config.Config) *EventHandler {
	return &EventHandler{store: store, cfg: cfg}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := geofence.ValidCoordinates(*req.VenueLat, *req.VenueLng); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid venue coordinates"})
		return
	}
	if req.RadiusMeters <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admission radius must be positive"})
		return
	}

	event := models.Event{
		EventID:         req.EventID,
		Name:            req.Name,
		AssetID:         req.AssetID,
		VenueLat:        *req.VenueLat,
		VenueLng:        *req.VenueLng,
		RadiusMeters:    req.RadiusMeters,
		OrganizerWallet: req.OrganizerWallet,
	}
	if req.Description != "" {
		event.Description = &req.Description
	}

	if err := h.store.InsertEvent(c, &event); err != nil {
		log.Printf("Failed to create event %s: %v", req.EventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	log.Printf("Created event %s (asset %d)", event.EventID, event.AssetID)
	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	events, err := h.store.ListEvents(c)
	if err != nil {
		log.Printf("Failed to list events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	// Surface the configured fallback for rows minted before back-fill.
	for i := range events {
		events[i].AssetID = resolveAssetID(events[i].AssetID, h.cfg.FallbackAssetID)
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	event, err := h.store.SelectEvent(c, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		log.Printf("Failed to get event %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	event.AssetID = resolveAssetID(event.AssetID, h.cfg.FallbackAssetID)
	c.JSON(http.StatusOK, event)
}

// UpdateEventAsset back-fills the ticket asset id once the asset has been
// minted on the ledger. This is the only mutable event field.
func (h *EventHandler) UpdateEventAsset(c *gin.Context) {
	eventID := c.Param("id")

	var req models.UpdateEventAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdateEventAsset(c, eventID, req.AssetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		log.Printf("Failed to update asset for event %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event asset"})
		return
	}

	log.Printf("Back-filled asset %d for event %s", req.AssetID, eventID)
	c.JSON(http.StatusOK, gin.H{"success": true, "event_id": eventID, "asset_id": req.AssetID})
}

// DebugGeofence computes the distance between a probe position and an
// event's venue. Operator tooling only; no trust decision is made here.
func (h *EventHandler) DebugGeofence(c *gin.Context) {
	eventID := c.Query("eventId")
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if eventID == "" || errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId, lat and lng query parameters are required"})
		return
	}

	event, err := h.store.SelectEvent(c, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	within, err := geofence.WithinRadius(lat, lng, event.VenueLat, event.VenueLng, event.RadiusMeters, h.cfg.GeofenceBufferMeters)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	distance := geofence.Distance(lat, lng, event.VenueLat, event.VenueLng)
	c.JSON(http.StatusOK, gin.H{
		"event_id":        event.EventID,
		"distance_meters": math.Round(distance*100) / 100,
		"radius_meters":   event.RadiusMeters,
		"buffer_meters":   h.cfg.GeofenceBufferMeters,
		"within_geofence": within,
	})
}

// resolveAssetID applies the decided precedence: a stored asset id wins; the
// configured fallback covers only rows whose asset has not been back-filled.
func resolveAssetID(stored, fallback uint64) uint64 {
	if stored != 0 {
		return stored
	}
	return fallback
}
