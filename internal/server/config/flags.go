package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/clipkeeper/internal/flagx"
)

// parseFlags populates Config from command-line flags.
//
// Supported flags:
//
//	-a string     gRPC bind address (e.g. ":50051")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   access token lifetime
//	-r duration   refresh token lifetime
//	-k string     storage access key id
//	-p string     storage secret access key
//	-user string  account to create at startup
//	-password string
//	-log string   log backend (slog or zap)
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-k", "-p", "-user", "-password", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.GRPCAddr, "a", cfg.GRPCAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.DurationVar(&cfg.AccessTokenTTL, "t", cfg.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&cfg.RefreshTokenTTL, "r", cfg.RefreshTokenTTL, "refresh token lifetime")
	fs.StringVar(&cfg.StorageAccessKeyID, "k", cfg.StorageAccessKeyID, "storage access key id")
	fs.StringVar(&cfg.StorageSecretAccessKey, "p", cfg.StorageSecretAccessKey, "storage secret access key")
	fs.StringVar(&cfg.SeedUser, "user", cfg.SeedUser, "account to create at startup")
	fs.StringVar(&cfg.SeedPassword, "password", cfg.SeedPassword, "password of the startup account")
	fs.StringVar(&cfg.LogBackend, "log", cfg.LogBackend, "log backend (slog or zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
