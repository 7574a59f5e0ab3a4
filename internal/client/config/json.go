package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clipkeeper/internal/flagx"
	"github.com/dmitrijs2005/clipkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "empty" so a partial file only
// overrides what it names.
type JsonConfig struct {
	DatabasePath      *string         `json:"database_path"`
	IPCAddr           *string         `json:"ipc_addr"`
	TokenServiceAddr  *string         `json:"token_service_addr"`
	S3Bucket          *string         `json:"s3_bucket"`
	S3Region          *string         `json:"s3_region"`
	S3BaseEndpoint    *string         `json:"s3_base_endpoint"`
	S3Prefix          *string         `json:"s3_prefix"`
	S3AccessKeyID     *string         `json:"s3_access_key_id"`
	S3SecretAccessKey *string         `json:"s3_secret_access_key"`
	PollInterval      *timex.Duration `json:"poll_interval"`
	SweepInterval     *timex.Duration `json:"sweep_interval"`
	StorageSecret     *string         `json:"storage_secret"`
	SettingsFile      *string         `json:"settings_file"`
	LogBackend        *string         `json:"log_backend"`
	Interactive       *bool           `json:"interactive"`
}

// parseJson overlays Config with values loaded from the file named by -c
// or -config. It panics on read or unmarshal errors.
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
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.IPCAddr, jc.IPCAddr)
	setString(&cfg.TokenServiceAddr, jc.TokenServiceAddr)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3Prefix, jc.S3Prefix)
	setString(&cfg.S3AccessKeyID, jc.S3AccessKeyID)
	setString(&cfg.S3SecretAccessKey, jc.S3SecretAccessKey)
	setString(&cfg.StorageSecret, jc.StorageSecret)
	setString(&cfg.SettingsFile, jc.SettingsFile)
	setString(&cfg.LogBackend, jc.LogBackend)

	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.SweepInterval != nil {
		cfg.SweepInterval = jc.SweepInterval.Duration
	}
	if jc.Interactive != nil {
		cfg.Interactive = *jc.Interactive
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
