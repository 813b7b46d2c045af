package main

import (
	"github.com/profparedes/theme-tier-server/config"
	"github.com/profparedes/theme-tier-server/logger"
	"github.com/profparedes/theme-tier-server/monitor"
	"github.com/profparedes/theme-tier-server/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Metrics endpoint is optional
	var mon *monitor.Monitor
	if cfg.Server.MetricsAddress != "" {
		mon = monitor.NewMonitor("theme_tier")
		mon.StartServer(cfg.Server.MetricsAddress)
		logger.Log.Infof("Metrics available on %s", cfg.Server.MetricsAddress)
	}

	// Start Server
	lobbyServer := server.NewLobbyServer(cfg.Server.HTTPAddress, mon)
	logger.Log.Infof("Starting lobby server on %s", cfg.Server.HTTPAddress)
	if err := lobbyServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
