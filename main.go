package main

import (
	"github.com/wfunc/townserver/broadcast"
	"github.com/wfunc/townserver/config"
	"github.com/wfunc/townserver/logger"
	"github.com/wfunc/townserver/monitor"
	"github.com/wfunc/townserver/server"
	"github.com/wfunc/townserver/session"
	"github.com/wfunc/townserver/tilemap"
	"github.com/wfunc/townserver/town"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Load the town map every town is initialized from
	townMap, err := tilemap.LoadFile(cfg.Town.MapFile)
	if err != nil {
		logger.Log.Fatalf("Failed to load town map: %v", err)
	}

	sessionManager := session.NewManager()
	broadcaster := broadcast.NewTownBroadcaster(sessionManager)
	townManager := town.NewManager(broadcaster, townMap)

	mon := monitor.NewMonitor("townserver")
	mon.StartServer(cfg.Server.MetricsAddress)

	townServer := server.NewTownServer(
		cfg.Server.HTTPAddress,
		cfg.Server.RPCAddress,
		townManager,
		sessionManager,
		mon,
		cfg.Town.SessionIdleTimeout,
	)

	logger.Log.Infof("Starting town server on %s", cfg.Server.HTTPAddress)
	if err := townServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
