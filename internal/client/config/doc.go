// Package config loads runtime configuration for the clipkeeper daemon.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-db string        path of the SQLite database
//	-ipc string       listen address of the local IPC server
//	-auth string      address:port of the token service
//	-bucket string    S3 bucket receiving synced clips
//	-region string    S3 region
//	-endpoint string  S3 base endpoint (for S3-compatible stores)
//	-prefix string    object key prefix
//	-poll duration    clipboard polling interval
//	-sweep duration   retention sweep tick
//	-settings string  TOML file seeding app settings on first run
//	-log string       log backend: zap or slog
//	-console          start the interactive console
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds. Keys absent from the file keep their previous value.
//
//	{
//	  "database_path": "clipkeeper.db",
//	  "ipc_addr": "127.0.0.1:7370",
//	  "token_service_addr": "127.0.0.1:50051",
//	  "s3_bucket": "my-clips",
//	  "s3_region": "eu-central-1",
//	  "s3_access_key_id": "AKIA...",
//	  "s3_secret_access_key": "...",
//	  "poll_interval": "500ms",
//	  "sweep_interval": "1h",
//	  "storage_secret": "...",
//	  "log_backend": "zap"
//	}
//
// Static S3 keys and the storage secret are only read from JSON so they do
// not show up in process listings.
package config
