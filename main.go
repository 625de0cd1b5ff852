package main

import (
	"log"
	"os"

	"lsb-steganography/config"
	"lsb-steganography/handlers"
	"lsb-steganography/stego"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(conf.TempDir, 0700); err != nil {
		log.Fatalf("Failed to prepare temp dir %s: %v", conf.TempDir, err)
	}

	router := handlers.NewRouter(conf)

	log.Printf("Server starting on port %s", conf.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/stego/embed      - Hide a message in an image or WAV (returns stego file)")
	log.Printf("  POST /api/v1/stego/extract    - Recover a hidden message")
	log.Printf("  POST /api/v1/stego/capacity   - Check whether a message fits a carrier")
	log.Printf("  POST /api/v1/stego/inspect    - Describe a carrier file")
	log.Printf("  GET  /api/v1/stego/algorithms - List embedding algorithms")
	log.Printf("  GET  /api/v1/stego/recommend  - Recommend an algorithm for a file type")
	log.Printf("  GET  /api/v1/health           - Health check")
	log.Printf("")
	log.Printf("Supported carriers: %v", stego.SupportedMimetypes())
	log.Printf("Limits: upload %d bytes, message %d chars, %d req/min (%d embed/extract)",
		conf.MaxUploadBytes, conf.MaxMessageLength, conf.RateLimitPerMinute, conf.EmbedRateLimitPerMinute)
	if conf.LegacySalt {
		log.Printf("Warning: legacy fixed-salt cipher text encoding is enabled")
	}

	if err := router.Run(":" + conf.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
