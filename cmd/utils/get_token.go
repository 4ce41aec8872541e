package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/infrastructure/config"
	"logsync-service/internal/interface/repository"
	"logsync-service/pkg/logger"
)

// Debug helper: logs into the device gateway with the configured
// credentials and prints the issued token, for use with curl.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client := repository.NewTelemetryClient(
		cfg.GatewayBaseURL,
		cfg.GatewayUsername,
		cfg.GatewayPassword,
		cfg.GatewayTimeout,
		cfg.GatewayTokenTTL,
		logger.NewLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := client.Authenticate(ctx, &entity.Device{Name: "get-token"})
	if err != nil {
		log.Fatalf("Failed to authenticate: %v", err)
	}

	fmt.Printf("\nToken: %s\nExpires: %s\n\n", token.AccessToken, token.Expiry.Format(time.RFC3339))
}
