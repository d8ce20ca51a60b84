package main

import (
	"context"
	"log"
	"os"

	"github.com/rawblock/omtsf-engine/internal/api"
	"github.com/rawblock/omtsf-engine/internal/extdata"
	"github.com/rawblock/omtsf-engine/internal/validate"
)

func main() {
	log.Println("Starting OMTSF Engine...")

	// ─── Environment Variables ───────────────────────────────────────────
	// DATABASE_URL is optional: absent, the engine runs with no external
	// data source and L3 rules that need one are skipped, per the
	// engine's own "absent ⇒ skipped" contract. No fallback credentials
	// are ever baked in for security-sensitive values.
	// ──────────────────────────────────────────────────────────────────────

	var externalData validate.ExternalDataSource
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		source, err := extdata.Connect(context.Background(), dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to Postgres cache, continuing without L3 external data: %v", err)
		} else {
			defer source.Close()
			if err := source.InitSchema(context.Background()); err != nil {
				log.Printf("Warning: cache schema init failed: %v", err)
			}
			externalData = source
		}
	} else {
		log.Println("DATABASE_URL not set — running without an external data source; L3 cross-reference rules will be skipped")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(externalData, wsHub)

	port := getEnvOrDefault("PORT", "5339")

	log.Printf("Engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
