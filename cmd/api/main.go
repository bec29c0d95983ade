package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/infrastructure/dynamo"
	googleinfra "github.com/storefront-api/internal/infrastructure/google"
	jwtinfra "github.com/storefront-api/internal/infrastructure/jwt"
	s3infra "github.com/storefront-api/internal/infrastructure/s3"
	"github.com/storefront-api/internal/infrastructure/smtp"
	"github.com/storefront-api/internal/infrastructure/sns"
	transporthttp "github.com/storefront-api/internal/transport/http"
	"github.com/storefront-api/internal/verification"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional, graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 product image store.
	s3Client := s3infra.NewClient(cfg)
	imageStore := s3infra.NewImageStore(s3Client, cfg.S3BucketName)

	// SMTP mailer carries the verification codes.
	mailer := smtp.NewMailer(cfg)

	// Verification codes live in process memory; the sweeper purges expired
	// records for the lifetime of the server.
	codeStore := verification.NewStore()
	codeStore.StartSweeper(ctx, cfg.VerificationSweep)
	codes := verification.NewService(codeStore, mailer, cfg.VerificationTTL, cfg.MaxCodeAttempts)

	// SNS order-placed publisher (optional, graceful fallback).
	var orderPublisher sns.OrderPublisher
	if cfg.SNSOrderTopicARN != "" {
		if pub, err := sns.NewPublisher(cfg); err == nil {
			orderPublisher = pub
		} else {
			log.Printf("WARN: SNS publisher not available: %v", err)
		}
	}

	// Google sign-in (optional).
	var googleVerifier *googleinfra.Verifier
	if cfg.GoogleClientID != "" {
		googleVerifier = googleinfra.NewVerifier(cfg.GoogleClientID)
	} else {
		log.Println("WARN: GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	deps := &transporthttp.Deps{
		UserRepo:       dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:    dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		ProductRepo:    dynamo.NewProductRepo(dynamoClient, cfg.DynamoTables.Products),
		CategoryRepo:   dynamo.NewCategoryRepo(dynamoClient, cfg.DynamoTables.Categories),
		OrderRepo:      dynamo.NewOrderRepo(dynamoClient, cfg.DynamoTables.Orders),
		ImageStore:     imageStore,
		Codes:          codes,
		OrderPublisher: orderPublisher,
		JWTProvider:    jwtProvider,
		GoogleVerifier: googleVerifier,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
