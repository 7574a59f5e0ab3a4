package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clipkeeper/internal/flagx"
	"github.com/dmitrijs2005/clipkeeper/internal/timex"
)

// JsonConfig is the JSON form of Config. Durations accept "15m" as well
// as integer nanoseconds.
type JsonConfig struct {
	GRPCAddr               string         `json:"grpc_addr"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	AccessTokenTTL         timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL        timex.Duration `json:"refresh_token_ttl"`
	StorageAccessKeyID     string         `json:"storage_access_key_id"`
	StorageSecretAccessKey string         `json:"storage_secret_access_key"`
	LogBackend             string         `json:"log_backend"`
}

// parseJson overlays non-empty values from the file named by -c/-config.
// It panics when the file cannot be read or decoded.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.GRPCAddr != "" {
		cfg.GRPCAddr = jc.GRPCAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenTTL.Duration != 0 {
		cfg.AccessTokenTTL = jc.AccessTokenTTL.Duration
	}
	if jc.RefreshTokenTTL.Duration != 0 {
		cfg.RefreshTokenTTL = jc.RefreshTokenTTL.Duration
	}
	if jc.StorageAccessKeyID != "" {
		cfg.StorageAccessKeyID = jc.StorageAccessKeyID
	}
	if jc.StorageSecretAccessKey != "" {
		cfg.StorageSecretAccessKey = jc.StorageSecretAccessKey
	}
	if jc.LogBackend != "" {
		cfg.LogBackend = jc.LogBackend
	}
}
