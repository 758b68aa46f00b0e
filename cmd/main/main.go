package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dkit-partners/src/analytics"
	"dkit-partners/src/auth"
	"dkit-partners/src/config"
	"dkit-partners/src/helpers"
	"dkit-partners/src/interfaces"
	"dkit-partners/src/logger"
	"dkit-partners/src/server"
	"dkit-partners/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Setup Storage
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger.Named("PostgresDB"))
	default:
		// Default to SQLite
		db, err = storage.NewSQLiteDB(config.MConfig, appLogger.Named("SQLiteDB"))
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}

	// The database may still be coming up when running under a supervisor,
	// so migrations get a few attempts before giving up.
	if err := helpers.RetryWithBackoff(appLogger, "database migration", 3, 2*time.Second, db.Initialize); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	// 3. Setup Components
	analyticsService := analytics.NewService(db, analytics.NewDefaultSynthesizer(), appLogger.Named("Analytics"), config.Analytics)
	authManager := auth.NewManager(db, appLogger.Named("Auth"), config.Auth)

	var srv interfaces.IDataExchanger = server.NewAPIServer(config.MConfig, appLogger.Named("APIServer"), db, analyticsService, authManager)

	// 4. Shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-quit
		appLogger.Info("Received %v, shutting down...", sig)
		srv.Stop()
		db.Close()
		os.Exit(0)
	}()

	// 5. Start Server (blocks)
	appLogger.Info("Starting %s on %s:%d", config.Name, config.Host, config.Port)
	if err := srv.Start(); err != nil {
		appLogger.Critical("Server failed: %v", err)
	}
}
