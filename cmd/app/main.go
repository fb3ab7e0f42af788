package main

import (
	"flag"
	"log"
	"os"

	"MCMTracker/internal/di"
	"MCMTracker/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s store=%s basket=%d", cfg.Environment, cfg.Store.Type, len(cfg.Basket))

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		log.Printf("kafka: brokers=%v topic=%s consumer=%t", cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Consumer.Enabled)
	} else {
		log.Printf("kafka: disabled")
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
