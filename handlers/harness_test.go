package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkcrypto "github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"algogate-backend/config"
	"algogate-backend/credential"
	"algogate-backend/models"
)

const (
	testEventID = "summer-fest-2026"
	testAssetID = uint64(42)
	venueLat    = 40.7812
	venueLng    = -73.9665
	venueRadius = 100.0
)

type testRig struct {
	store     *fakeStore
	oracle    *fakeOracle
	codec     *credential.Codec
	publisher *recordingPublisher
	router    *gin.Engine
	cfg       config.Config

	holderWallet string
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		OrganizerWallet:       sdkcrypto.GenerateAccount().Address.String(),
		TicketPriceMicroAlgos: 1_000_000,
		CredentialWindowMS:    20000,
		GeofenceBufferMeters:  50,
	}

	codec, err := credential.NewCodec("handler-test-secret", cfg.CredentialWindowMS)
	require.NoError(t, err)

	st := newFakeStore()
	oracle := newFakeOracle()
	publisher := &recordingPublisher{}

	st.events[testEventID] = models.Event{
		EventID:         testEventID,
		Name:            "Summer Fest",
		AssetID:         testAssetID,
		VenueLat:        venueLat,
		VenueLng:        venueLng,
		RadiusMeters:    venueRadius,
		OrganizerWallet: cfg.OrganizerWallet,
	}

	holder := sdkcrypto.GenerateAccount().Address.String()
	oracle.setHolding(holder, testAssetID, 1)

	eventHandler := NewEventHandler(st, cfg)
	ticketHandler := NewTicketHandler(st, oracle, cfg)
	credentialHandler := NewCredentialHandler(st, oracle, codec, nil, cfg)
	verifyHandler := NewVerifyHandler(st, oracle, codec, nil, publisher, cfg)
	userHandler := NewUserHandler(st)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/events", eventHandler.CreateEvent)
	api.GET("/events/:id", eventHandler.GetEvent)
	api.PUT("/events/:id/asset", eventHandler.UpdateEventAsset)
	api.GET("/debug/geofence", eventHandler.DebugGeofence)
	api.POST("/tickets/purchase", ticketHandler.BuyTicket)
	api.PUT("/tickets/purchase", ticketHandler.ConfirmPurchase)
	api.GET("/wallet/tickets", ticketHandler.ListWalletTickets)
	api.POST("/credentials", credentialHandler.MintCredential)
	api.POST("/credentials/verify", verifyHandler.VerifyCredential)
	api.GET("/events/:id/checkins", verifyHandler.GetCheckins)
	api.POST("/profiles/upsert", userHandler.UpsertProfile)
	api.GET("/profiles/:walletAddress", userHandler.GetProfile)

	return &testRig{
		store:        st,
		oracle:       oracle,
		codec:        codec,
		publisher:    publisher,
		router:       router,
		cfg:          cfg,
		holderWallet: holder,
	}
}

func (r *testRig) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if len(rec.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	}
	return rec, decoded
}

// mint requests a credential for the holder wallet from inside the venue.
func (r *testRig) mint(t *testing.T) models.CredentialPayload {
	t.Helper()

	lat, lng := venueLat, venueLng
	rec, _ := r.do(t, http.MethodPost, "/api/v1/credentials", models.MintCredentialRequest{
		WalletAddress: r.holderWallet,
		EventID:       testEventID,
		UserLat:       &lat,
		UserLng:       &lng,
	})
	require.Equal(t, http.StatusOK, rec.Code, "mint failed: %s", rec.Body.String())

	var resp struct {
		QRPayload models.CredentialPayload `json:"qrPayload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.QRPayload
}
