package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"algogate-backend/cache"
	"algogate-backend/config"
	"algogate-backend/credential"
	"algogate-backend/handlers"
	"algogate-backend/ledger"
	"algogate-backend/middleware"
	"algogate-backend/queue"
	"algogate-backend/store"
)

func connectToDatabase(databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to the database!")
	return pool, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load configuration: %v\n", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v\n", err)
	}

	pool, err := connectToDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	oracle, err := ledger.NewAlgorandOracle(cfg.AlgodURL, cfg.AlgodToken, cfg.IndexerURL, time.Duration(cfg.OracleTimeoutMS)*time.Millisecond)
	if err != nil {
		log.Fatalf("Unable to create ledger clients: %v\n", err)
	}
	log.Println("Ledger clients initialized")

	codec, err := credential.NewCodec(cfg.CredentialSecret, cfg.CredentialWindowMS)
	if err != nil {
		log.Fatalf("Invalid credential configuration: %v\n", err)
	}

	var credentialCache *cache.CredentialCache
	if cfg.RedisAddr != "" {
		credentialCache = cache.NewCredentialCache(cfg.RedisAddr, cfg.RedisPassword)
		if credentialCache == nil {
			log.Println("Warning: Redis unreachable, running without the credential cache")
		}
	}

	var publisher queue.Publisher
	if cfg.AmqpURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.AmqpURL)
	}

	db := store.NewPostgresStore(pool)

	eventHandler := handlers.NewEventHandler(db, cfg)
	ticketHandler := handlers.NewTicketHandler(db, oracle, cfg)
	credentialHandler := handlers.NewCredentialHandler(db, oracle, codec, credentialCache, cfg)
	verifyHandler := handlers.NewVerifyHandler(db, oracle, codec, credentialCache, publisher, cfg)
	userHandler := handlers.NewUserHandler(db)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")
	{
		// Event routes
		api.POST("/events", eventHandler.CreateEvent)
		api.GET("/events", eventHandler.GetEvents)
		api.GET("/events/:id", eventHandler.GetEvent)
		api.PUT("/events/:id/asset", eventHandler.UpdateEventAsset)

		// Purchase routes
		api.POST("/tickets/purchase", ticketHandler.BuyTicket)
		api.PUT("/tickets/purchase", ticketHandler.ConfirmPurchase)
		api.GET("/wallet/tickets", ticketHandler.ListWalletTickets)

		// Credential mint
		api.POST("/credentials", credentialHandler.MintCredential)

		// Gate-side routes, optionally behind scanner auth
		gate := api.Group("")
		if cfg.ScannerJWTSecret != "" {
			gate.Use(middleware.ScannerAuth(cfg.ScannerJWTSecret))
		}
		gate.POST("/credentials/verify", verifyHandler.VerifyCredential)
		gate.GET("/events/:id/checkins", verifyHandler.GetCheckins)

		// Profile routes
		api.POST("/profiles/upsert", userHandler.UpsertProfile)
		api.GET("/profiles/:walletAddress", userHandler.GetProfile)

		// Operator tooling
		api.GET("/debug/geofence", eventHandler.DebugGeofence)

		api.GET("/test-db", func(c *gin.Context) {
			if err := pool.Ping(c); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed: " + err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "Database connection OK"})
		})
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	log.Printf("Server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v\n", err)
	}
}
