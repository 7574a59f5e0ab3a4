package config

import "time"

// Config holds runtime settings for the clipkeeper daemon.
//
// S3AccessKeyID and S3SecretAccessKey are optional. When both are set the
// drive uses them directly instead of session credentials obtained by
// signing in. StorageSecret, when set, seals persisted credentials.
type Config struct {
	DatabasePath     string
	IPCAddr          string
	TokenServiceAddr string

	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	S3Prefix          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	PollInterval  time.Duration
	SweepInterval time.Duration

	StorageSecret string
	SettingsFile  string
	LogBackend    string
	Interactive   bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "clipkeeper.db"
	c.IPCAddr = "127.0.0.1:7370"
	c.TokenServiceAddr = "127.0.0.1:50051"
	c.S3Bucket = "clipkeeper"
	c.S3Region = "us-east-1"
	c.S3Prefix = "clips"
	c.PollInterval = 500 * time.Millisecond
	c.SweepInterval = 24 * time.Hour
	c.SettingsFile = "clipkeeper.toml"
	c.LogBackend = "zap"
}

// StaticS3Credentials reports whether fixed S3 keys are configured.
func (c *Config) StaticS3Credentials() bool {
	return c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
