//go:build lambda

package main

import (
	"clientsvc/internal/api"
	"clientsvc/internal/backends"
	"clientsvc/internal/pub"
	"clientsvc/internal/service"
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	err := godotenv.Load(envFile)
	if err != nil {
		log.Info("The .env file not found.")
	}
	log.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()

	st, err := backends.SettingsFromEnv()
	if err != nil {
		log.Fatalf("Failed to read settings: %v", err)
	}
	store, err := backends.Open(ctx, st)
	if err != nil {
		log.Fatalf("Failed to initialize client store: %v", err)
	}

	var opts []service.Option
	if topic := os.Getenv("EVENTS_TOPIC_ARN"); topic != "" {
		snsClient, err := pub.NewSNSClient(ctx, os.Getenv("SNS_ENDPOINT"))
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		opts = append(opts, service.WithPublisher(pub.NewSNS(snsClient), topic))
	}

	handler := api.NewHandler(service.NewClientService(store, opts...))

	// Start Lambda runtime
	lambda.Start(handler.HandleAPIGateway)
}
