package main

import (
	"flag"
	"log"
	"os"

	"TradePulse/internal/di"
	"TradePulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s log_dir=%s retention_days=%d",
		cfg.Environment, cfg.Telemetry.LogDir, cfg.Telemetry.RetentionDays)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.Archive.Enabled {
		log.Printf("archive: connected and schema ready - db: %s", cfg.Archive.Database)
	}
	if cfg.Events.Kafka.Enabled {
		log.Printf("kafka: forwarding events brokers=%v topic=%s",
			cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
