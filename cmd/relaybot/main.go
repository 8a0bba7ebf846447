package main

import (
	"context"
	"log"

	corecmd "github.com/m3rciful/relaybot/core/cmd"
	"github.com/m3rciful/relaybot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options[*app.Config]{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadConfig,
		Bootstrap: func(ctx context.Context, cfg *app.Config) (corecmd.TelegramApp, error) {
			return app.Bootstrap(ctx, cfg)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
