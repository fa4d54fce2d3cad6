package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/voicelink/pkg/accounts"
	"github.com/urmzd/voicelink/pkg/api"
	"github.com/urmzd/voicelink/pkg/backend"
	"github.com/urmzd/voicelink/pkg/catalog"
	"github.com/urmzd/voicelink/pkg/config"
	"github.com/urmzd/voicelink/pkg/db"
	"github.com/urmzd/voicelink/pkg/device/schema"
	"github.com/urmzd/voicelink/pkg/oauth"
	"github.com/urmzd/voicelink/pkg/provider"

	_ "github.com/urmzd/voicelink/docs"
)

// @title           Voicelink API
// @version         1.0
// @description     Smart home provider endpoints for a voice assistant platform, with OAuth account linking

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	hashPassword := flag.String("hash-password", "", "Print the bcrypt hash of a password for accounts.users and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := accounts.HashPassword(*hashPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}
		fmt.Println(hash)
		return
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("api_address", cfg.API.Address()).
		Str("store", cfg.Store.Driver).
		Int("devices", len(cfg.Devices)).
		Int("users", len(cfg.Accounts.Users)).
		Msg("Configuration loaded")

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open token store")
	}

	controller := openController(cfg)

	cat, err := catalog.New(cfg, controller, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid device declaration")
	}

	manager, err := accounts.NewManager(store, accounts.Options{
		Users:     cfg.PasswordHashes(),
		JWTSecret: []byte(cfg.Accounts.JWTSecret),
		Lifetime:  cfg.OAuth.Lifetime,
		CodeTTL:   cfg.Accounts.CodeTTL,
		Issuer:    cfg.Accounts.Issuer,
		Logger:    log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create account manager")
	}

	page := cfg.OAuth.AuthorizationPage
	oauthSvc, err := oauth.New(oauth.Config{
		Client:     cfg.OAuth.Client,
		Secret:     cfg.OAuth.Secret,
		Lifetime:   cfg.OAuth.Lifetime,
		CodeLength: cfg.OAuth.CodeLength,
		AuthorizationPage: &oauth.AuthorizationPage{
			Type: oauth.PageType(page.Type),
			Path: page.Path,
			URL:  page.URL,
		},
		Callbacks: manager.Callbacks(),
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid OAuth configuration")
	}

	// Create and start API router
	router := api.NewRouter(api.Options{
		Provider: provider.New(cat, provider.Options{
			Strict: cfg.API.StrictDevices,
			Logger: log.Logger,
		}),
		OAuth:      oauthSvc,
		Controller: controller,
		Validator:  schema.NewValidator(),
		Unlink:     manager.Unlink,
	})

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		controller.Close()
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close token store")
		}
		os.Exit(0)
	}()

	// Start server
	addr := cfg.API.Address()
	log.Info().Str("address", addr).Msg("Starting API server")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// openStore opens the configured token store
func openStore(ctx context.Context, cfg *config.Config) (accounts.Store, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Store.Redis.Addr, err)
		}
		log.Info().Str("addr", cfg.Store.Redis.Addr).Msg("Redis connected")
		return accounts.NewRedisStore(rdb, cfg.Accounts.RefreshTTL), rdb, nil

	default:
		database, err := db.Open(ctx, cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", database.Path()).Msg("Token store opened")
		return database, database, nil
	}
}

// openController connects to the MQTT broker; falls back to NullController
func openController(cfg *config.Config) backend.Controller {
	if cfg.MQTT.Broker == "" {
		log.Warn().Msg("No MQTT broker configured, using null controller")
		return backend.NewNullController()
	}

	mqttController, err := backend.NewMQTTController(backend.MQTTOptions{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		QoS:         byte(cfg.MQTT.QoS),
		TopicPrefix: cfg.MQTT.TopicPrefix,
		Timeout:     cfg.MQTT.Timeout,
	}, log.Logger)
	if err != nil {
		log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT backend unavailable, using null controller")
		return backend.NewNullController()
	}
	return mqttController
}
