package main

import (
	"log"

	corecmd "github.com/m3rciful/fitbot/core/cmd"
	"github.com/m3rciful/fitbot/internal/app"
)

func main() {
	if err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "configs/config.yaml",
		LoadConfig:        app.LoadConfigCarrier,
		Bootstrap:         app.Bootstrap,
	}); err != nil {
		log.Fatal(err)
	}
}
