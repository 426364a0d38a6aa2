package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"invoicenorm/cmd"
	"invoicenorm/internal/config"
	"invoicenorm/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logConfig := logger.DefaultConfig()
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
	} else {
		logConfig = cfg.GetLoggerConfig()
	}

	closer, err := logger.Setup(logConfig)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closer.Close()

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting invoicenorm")

	cmd.Execute()
}
