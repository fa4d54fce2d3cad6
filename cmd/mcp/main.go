package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/voicelink/pkg/backend"
	"github.com/urmzd/voicelink/pkg/catalog"
	"github.com/urmzd/voicelink/pkg/config"
	"github.com/urmzd/voicelink/pkg/device/schema"
	voicelinkmcp "github.com/urmzd/voicelink/pkg/mcp"
	"github.com/urmzd/voicelink/pkg/provider"
)

func main() {
	// stdout is the MCP transport, log to stderr
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	user := flag.String("user", "", "User whose devices are exposed (default: first configured user)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	userID := *user
	if userID == "" {
		userID = cfg.Accounts.Users[0].Name
	}
	if _, ok := cfg.UserDevices(userID); !ok {
		log.Fatal().Str("user", userID).Msg("Unknown user")
	}

	var controller backend.Controller = backend.NewNullController()
	if cfg.MQTT.Broker != "" {
		mqttController, err := backend.NewMQTTController(backend.MQTTOptions{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID + "-mcp",
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			QoS:         byte(cfg.MQTT.QoS),
			TopicPrefix: cfg.MQTT.TopicPrefix,
			Timeout:     cfg.MQTT.Timeout,
		}, log.Logger)
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT backend unavailable, using null controller")
		} else {
			controller = mqttController
		}
	}
	defer controller.Close()

	cat, err := catalog.New(cfg, controller, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid device declaration")
	}

	p := provider.New(cat, provider.Options{
		Strict: cfg.API.StrictDevices,
		Logger: log.Logger,
	})

	// Create and start MCP server
	mcpServer := voicelinkmcp.NewServer(p, controller, schema.NewValidator(), userID)

	log.Info().Str("user", userID).Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
