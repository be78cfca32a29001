package main

import (
	"crypto/tls"
	"log"
	"net/http"
	"path/filepath"

	"smart-lesson/internal/config"
	"smart-lesson/internal/db"
	"smart-lesson/internal/export"
	"smart-lesson/internal/genai"
	"smart-lesson/internal/handlers"
	"smart-lesson/internal/quota"
	"smart-lesson/internal/services"
	"smart-lesson/internal/tts"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database
	if err := db.InitDatabase(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	ai := genai.NewClient(cfg.GeminiAPIKey)
	speech := tts.NewClient(cfg.TTSAPIKey, filepath.Join(cfg.DataPath, "tts-cache"))
	deckService := services.NewDeckService(ai)
	savedStore := services.NewSavedPresentationStore(db.DB)
	gate := quota.NewSQLGate(db.DB, quota.Limits{
		Generations: cfg.Quota.Generations,
		Downloads:   cfg.Quota.Downloads,
	})

	// Initialize handlers
	deckHandler := handlers.NewDeckHandler(deckService, savedStore, gate, ai, export.JSONExporter{})
	aiHandler := handlers.NewAIHandler(ai)
	liveHandler := handlers.NewLiveHandler(deckService, speech)

	// Setup routes
	router := handlers.SetupRoutes(deckHandler, aiHandler, liveHandler)

	// Configure server
	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	// Configure TLS if enabled
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{
			MinVersion: getTLSVersion(cfg.TLS.MinVersion),
		}

		log.Printf("Starting HTTPS server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("TLS Certificate: %s", cfg.TLS.CertFile)
		log.Printf("TLS Key: %s", cfg.TLS.KeyFile)
		log.Printf("TLS Min Version: %s", cfg.TLS.MinVersion)

		log.Fatal(server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile))
	} else {
		log.Printf("Starting HTTP server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Warning: HTTP mode is not recommended for production")

		log.Fatal(server.ListenAndServe())
	}
}

// getTLSVersion converts string version to tls.Version constant
func getTLSVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
