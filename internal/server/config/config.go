// Package config handles configuration for the token service: defaults,
// an optional JSON overlay and command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the token service.
//
// Fields:
//   - GRPCAddr: bind address of the gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps accounts in memory.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes.
//   - StorageAccessKeyID / StorageSecretAccessKey: storage keys handed to
//     signed-in clients with every credential bundle.
//   - SeedUser / SeedPassword: account created at startup when both are set.
type Config struct {
	GRPCAddr               string
	DatabaseDSN            string
	SecretKey              string
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	SeedUser               string
	SeedPassword           string
	LogBackend             string
}

// LoadDefaults populates Config with development defaults. They are not
// fit for production.
func (c *Config) LoadDefaults() {
	c.GRPCAddr = ":50051"
	c.SecretKey = "secretKey"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 30 * 24 * time.Hour
	c.StorageAccessKeyID = "minioadmin"
	c.StorageSecretAccessKey = "minioadmin"
	c.LogBackend = "slog"
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
