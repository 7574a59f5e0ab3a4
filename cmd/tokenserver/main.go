package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/clipkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/clipkeeper/internal/server"
	"github.com/dmitrijs2005/clipkeeper/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	buildinfo.PrintBuildData(os.Stdout)

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
