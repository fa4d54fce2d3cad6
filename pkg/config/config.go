// Package config loads the voicelink host configuration from YAML with
// environment variable overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urmzd/voicelink/pkg/device"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a configuration that failed validation
var ErrInvalid = errors.New("invalid configuration")

// Store drivers
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the complete host configuration
type Config struct {
	Debug    bool           `yaml:"debug"`
	API      APIConfig      `yaml:"api"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	Accounts AccountsConfig `yaml:"accounts"`
	Store    StoreConfig    `yaml:"store"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Devices  []DeviceConfig `yaml:"devices"`
}

// APIConfig configures the HTTP server
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// StrictDevices rejects the whole device list when one device is malformed
	StrictDevices bool `yaml:"strict_devices"`
}

// Address returns the listen address
func (c APIConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// OAuthConfig configures the platform's OAuth client
type OAuthConfig struct {
	Client            string     `yaml:"client"`
	Secret            string     `yaml:"secret"`
	Lifetime          int        `yaml:"lifetime"`
	CodeLength        int        `yaml:"code_length"`
	AuthorizationPage PageConfig `yaml:"authorization_page"`
}

// PageConfig configures the consent page
type PageConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
	URL  string `yaml:"url"`
}

// AccountsConfig configures the account system
type AccountsConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	Issuer     string        `yaml:"issuer"`
	CodeTTL    time.Duration `yaml:"code_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
	Users      []UserConfig  `yaml:"users"`
}

// UserConfig is an account allowed to link with the platform
type UserConfig struct {
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
	// Devices lists the device ids the user sees. Omitted means all devices,
	// an explicit empty list means none.
	Devices []string `yaml:"devices"`
}

// StoreConfig selects the token store
type StoreConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
}

// SQLiteConfig configures the SQLite store. An empty path uses
// voicelink/voicelink.db under the user config directory.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the Redis store
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig configures the device backend. An empty broker runs without one.
type MQTTConfig struct {
	Broker      string        `yaml:"broker"`
	ClientID    string        `yaml:"client_id"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	QoS         int           `yaml:"qos"`
	TopicPrefix string        `yaml:"topic_prefix"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DeviceConfig declares a device exposed to the platform
type DeviceConfig struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type"`
	Description string         `yaml:"description"`
	Room        string         `yaml:"room"`
	Topic       string         `yaml:"topic"`
	DeviceInfo  *device.Info   `yaml:"device_info"`
	CustomData  map[string]any `yaml:"custom_data"`

	Capabilities []CapabilityConfig `yaml:"capabilities"`
	Properties   []PropertyConfig   `yaml:"properties"`
}

// StateTopic returns the backend topic of the device, its id by default
func (d DeviceConfig) StateTopic() string {
	if d.Topic != "" {
		return d.Topic
	}
	return d.ID
}

// CapabilityConfig declares a capability
type CapabilityConfig struct {
	Type        device.CapabilityType `yaml:"type"`
	Retrievable *bool                 `yaml:"retrievable"`
	Reportable  *bool                 `yaml:"reportable"`
	Parameters  *device.Parameters    `yaml:"parameters"`
}

// PropertyConfig declares a property
type PropertyConfig struct {
	Type        device.PropertyType `yaml:"type"`
	Retrievable *bool               `yaml:"retrievable"`
	Reportable  *bool               `yaml:"reportable"`
	Parameters  *device.Parameters  `yaml:"parameters"`
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration defaults
func Default() *Config {
	return &Config{
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		OAuth: OAuthConfig{
			Lifetime:   3600,
			CodeLength: 6,
		},
		Accounts: AccountsConfig{
			Issuer:  "voicelink",
			CodeTTL: 10 * time.Minute,
		},
		Store: StoreConfig{
			Driver: StoreSQLite,
			Redis:  RedisConfig{Addr: "localhost:6379"},
		},
		MQTT: MQTTConfig{
			ClientID:    "voicelink",
			QoS:         1,
			TopicPrefix: "voicelink",
			Timeout:     5 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VOICELINK_OAUTH_SECRET"); v != "" {
		cfg.OAuth.Secret = v
	}
	if v := os.Getenv("VOICELINK_JWT_SECRET"); v != "" {
		cfg.Accounts.JWTSecret = v
	}

	if v := os.Getenv("VOICELINK_DATABASE_PATH"); v != "" {
		cfg.Store.SQLite.Path = v
	}
	if v := os.Getenv("VOICELINK_REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}

	if v := os.Getenv("VOICELINK_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("VOICELINK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var errs []string

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.OAuth.Client == "" {
		errs = append(errs, "oauth.client is required")
	}
	if c.OAuth.Secret == "" {
		errs = append(errs, "oauth.secret is required (set VOICELINK_OAUTH_SECRET environment variable)")
	}
	if c.OAuth.Lifetime < 1 {
		errs = append(errs, "oauth.lifetime must be positive")
	}
	switch c.OAuth.AuthorizationPage.Type {
	case "static_page":
		if c.OAuth.AuthorizationPage.Path == "" {
			errs = append(errs, "oauth.authorization_page.path is required for static_page")
		}
	case "callback_url":
		if c.OAuth.AuthorizationPage.URL == "" {
			errs = append(errs, "oauth.authorization_page.url is required for callback_url")
		}
	default:
		errs = append(errs, "oauth.authorization_page.type must be static_page or callback_url")
	}

	const minJWTSecretLength = 32
	if c.Accounts.JWTSecret == "" {
		errs = append(errs, "accounts.jwt_secret is required (set VOICELINK_JWT_SECRET environment variable)")
	} else if len(c.Accounts.JWTSecret) < minJWTSecretLength {
		errs = append(errs, "accounts.jwt_secret must be at least 32 characters")
	}
	if len(c.Accounts.Users) == 0 {
		errs = append(errs, "accounts.users must list at least one user")
	}

	switch c.Store.Driver {
	case StoreSQLite:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, "store.redis.addr is required for the redis driver")
		}
	default:
		errs = append(errs, "store.driver must be sqlite or redis")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	ids := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.ID == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].id is required", i))
			continue
		}
		if ids[d.ID] {
			errs = append(errs, fmt.Sprintf("devices[%d].id %q is duplicated", i, d.ID))
		}
		ids[d.ID] = true
	}

	names := make(map[string]bool, len(c.Accounts.Users))
	for i, u := range c.Accounts.Users {
		if u.Name == "" || u.PasswordHash == "" {
			errs = append(errs, fmt.Sprintf("accounts.users[%d] needs a name and a password_hash", i))
		}
		if names[u.Name] {
			errs = append(errs, fmt.Sprintf("accounts.users[%d].name %q is duplicated", i, u.Name))
		}
		names[u.Name] = true

		for _, id := range u.Devices {
			if !ids[id] {
				errs = append(errs, fmt.Sprintf("accounts.users[%d] refers to unknown device %q", i, id))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}

	return nil
}

// UserDevices returns the device ids visible to a user and whether the user exists.
// A nil slice means every device, an empty one none.
func (c *Config) UserDevices(name string) ([]string, bool) {
	for _, u := range c.Accounts.Users {
		if u.Name == name {
			return u.Devices, true
		}
	}
	return nil, false
}

// PasswordHashes returns the bcrypt hash of every user by name
func (c *Config) PasswordHashes() map[string]string {
	users := make(map[string]string, len(c.Accounts.Users))
	for _, u := range c.Accounts.Users {
		users[u.Name] = u.PasswordHash
	}
	return users
}
