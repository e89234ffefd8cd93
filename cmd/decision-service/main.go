package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	apiserver "github.com/appcloud-project/decision-service/internal/api_server"
	"github.com/appcloud-project/decision-service/internal/bulk"
	"github.com/appcloud-project/decision-service/internal/config"
	"github.com/appcloud-project/decision-service/internal/decision"
	"github.com/appcloud-project/decision-service/internal/handlers"
	"github.com/appcloud-project/decision-service/internal/oauth"
	"github.com/appcloud-project/decision-service/internal/service"
	"github.com/appcloud-project/decision-service/internal/store"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logrus.SetLevel(cfg.Service.ParseLogLevel())

	// Initialize database
	db, err := store.InitDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	dataStore := store.NewStore(db)
	defer dataStore.Close()

	// OAuth signing for outbound Bulk API calls and verification for
	// inbound lifecycle calls
	signer := oauth.NewSigner(cfg.Eloqua.ConsumerKey, cfg.Eloqua.ConsumerSecret)

	var verifier handlers.RequestVerifier
	if cfg.Eloqua.VerifySignatures {
		nonces, err := oauth.NewNonceStore(cfg.NonceStore)
		if err != nil {
			logrus.Fatalf("Failed to initialize nonce store: %v", err)
		}
		defer nonces.Close()
		verifier = oauth.NewVerifier(cfg.Eloqua.ConsumerKey, cfg.Eloqua.ConsumerSecret,
			cfg.Eloqua.TimestampWindow, nonces)
	} else {
		logrus.Warn("OAuth signature verification is disabled")
	}

	rules := decision.NewRegistry(
		decision.NewEmailDomainRule(),
		decision.NewCountryLookupRule(dataStore.CountryRule()),
		decision.NewScoreThresholdRule(),
		decision.NewConditionRule(),
		decision.NewRegexPatternRule(),
	)

	bulkClient := bulk.NewClient(cfg.Eloqua.BulkAPIBase, signer)
	decisionService := service.NewDecisionService(dataStore, rules, bulkClient, cfg.Eloqua.MaxRecordsPerNotification)
	countryRuleService := service.NewCountryRuleService(dataStore)
	handler := handlers.NewHandler(decisionService, countryRuleService, rules,
		cfg.Service.Name, cfg.Service.Description)

	// Start server
	listener, err := net.Listen("tcp", cfg.Service.Address)
	if err != nil {
		logrus.Fatalf("Failed to listen: %v", err)
	}

	srv := apiserver.New(cfg, listener, handler, verifier)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logrus.Infof("Starting server on %s", listener.Addr().String())
	if err := srv.Run(ctx); err != nil {
		logrus.Fatalf("Server failed: %v", err)
	}
}
