package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/clipkeeper/internal/flagx"
)

var knownFlags = []string{
	"-db", "-ipc", "-auth", "-bucket", "-region", "-endpoint", "-prefix",
	"-poll", "-sweep", "-settings", "-log", "-console",
}

// parseFlags populates Config fields from command-line flags. Only the
// flags listed above are considered; everything else is filtered out
// with flagx.FilterArgs first.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags, "-console")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path of the SQLite database")
	fs.StringVar(&cfg.IPCAddr, "ipc", cfg.IPCAddr, "listen address of the IPC server")
	fs.StringVar(&cfg.TokenServiceAddr, "auth", cfg.TokenServiceAddr, "address and port of the token service")
	fs.StringVar(&cfg.S3Bucket, "bucket", cfg.S3Bucket, "S3 bucket for synced clips")
	fs.StringVar(&cfg.S3Region, "region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "endpoint", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3Prefix, "prefix", cfg.S3Prefix, "object key prefix")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "clipboard polling interval")
	fs.DurationVar(&cfg.SweepInterval, "sweep", cfg.SweepInterval, "retention sweep tick")
	fs.StringVar(&cfg.SettingsFile, "settings", cfg.SettingsFile, "TOML settings seed file")
	fs.StringVar(&cfg.LogBackend, "log", cfg.LogBackend, "log backend (zap or slog)")
	fs.BoolVar(&cfg.Interactive, "console", cfg.Interactive, "start the interactive console")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
