package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gold-cycles/src/analysis"
	"gold-cycles/src/config"
	datasource "gold-cycles/src/data_source"
	csvsource "gold-cycles/src/data_source/csv"
	"gold-cycles/src/interfaces"
	"gold-cycles/src/logger"
	"gold-cycles/src/server"
	"gold-cycles/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// 1. Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 3. Select the bar source
	var source interfaces.IBarSource

	switch cfg.Storage.SourceType {
	case "sqlite":
		source, err = storage.NewSQLiteBarSource(cfg.MConfig, appLogger.Named("sqlite"))
	case "postgres":
		source, err = storage.NewPostgresBarSource(cfg.MConfig, appLogger.Named("postgres"))
	default:
		source = csvsource.NewCSVBarSource(cfg.MConfig, appLogger.Named("csv"))
	}
	if err != nil {
		appLogger.Critical("Failed to init bar source: %v", err)
	}

	// Critical exits the process, so the source is closed explicitly on every
	// path instead of deferred.

	// 4. Load every configured timeframe up front; there is no live feed,
	// the dataset is the whole universe until the process restarts.
	manager := datasource.NewDatasetManager(cfg.MConfig, appLogger.Named("loader"), source)
	if err := manager.LoadAll(context.Background()); err != nil {
		source.Close()
		appLogger.Critical("Dataset load failed: %v", err)
	}

	// 5. Analysis facade and API server
	facade := analysis.NewProfileFacade(cfg.MConfig, appLogger.Named("analysis"))
	srv := server.NewAnalysisServer(cfg.MConfig, appLogger.Named("server"), manager, facade)

	if err := srv.Start(); err != nil {
		source.Close()
		appLogger.Critical("Server failed: %v", err)
	}
	source.Close()
}
