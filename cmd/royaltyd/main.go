package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"royaltychain/config"
	"royaltychain/core"
	"royaltychain/observability/logging"
	"royaltychain/rpc"
	"royaltychain/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("ROYALTYD_ENV"))
	logger := logging.Setup("royaltyd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	admin, err := cfg.Admin()
	if err != nil {
		logger.Error("Failed to resolve administrator address", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node, err := core.NewNode(db, admin)
	if err != nil {
		logger.Error("Failed to initialise node", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("node ready",
		slog.String("network", cfg.NetworkName),
		slog.String("admin", cfg.AdminAddress),
		slog.Uint64("height", node.Height()),
	)

	server := rpc.NewServer(node)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
