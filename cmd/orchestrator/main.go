package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime/openai"
	"github.com/rca-orchestrator/orchestrator/internal/config"
	"github.com/rca-orchestrator/orchestrator/internal/httpapi"
	"github.com/rca-orchestrator/orchestrator/internal/logging"
	"github.com/rca-orchestrator/orchestrator/internal/orchestrator"
	"github.com/rca-orchestrator/orchestrator/internal/peer"
	"github.com/rca-orchestrator/orchestrator/internal/registry"
	"github.com/rca-orchestrator/orchestrator/internal/session"
)

func main() {
	log := logging.New()
	defer log.Sync() //nolint:errcheck

	config.LoadEnv(log)

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║      MCP RCA Orchestrator             ║")
	fmt.Println("║  Multi-agent incident triage          ║")
	fmt.Println("╚══════════════════════════════════════╝")

	cfg := config.FromEnv()
	fmt.Printf("🤖 Model: %s\n", cfg.Model)
	fmt.Printf("📂 Sessions: %s\n", cfg.SessionsDir)
	fmt.Printf("📋 Peers config: %s\n", cfg.PeersFile)

	llmClient, err := openai.NewClientFromEnv(logging.Component(log, "llm"))
	if err != nil {
		log.Fatal("failed to initialize LLM client", zap.Error(err))
	}

	descs, err := peer.LoadConfig(cfg.PeersFile)
	if err != nil {
		log.Fatal("failed to load peers config", zap.String("path", cfg.PeersFile), zap.Error(err))
	}

	peerLog := logging.Component(log, "peer")
	peers := peer.NewManager(peerLog)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.ToolCallTimeout*2)
	peers.ConnectAll(connectCtx, descs)
	cancelConnect()
	defer peers.CloseAll()

	connected := peers.List()
	if len(connected) == 0 {
		log.Warn("no MCP peers connected; the main agent will have no tools available")
	}
	fmt.Printf("🔌 Peers: %d connected\n", len(connected))

	reg := registry.Build(logging.Component(log, "registry"), connected)
	fmt.Printf("🛠️  Tools: %d registered\n", len(reg.All()))

	store, err := session.NewStore(logging.Component(log, "session"), cfg.SessionsDir)
	if err != nil {
		log.Fatal("failed to initialize session store", zap.Error(err))
	}

	orch := orchestrator.New(
		logging.Component(log, "orchestrator"),
		cfg.Model,
		peers,
		reg,
		llmClient,
		store,
		cfg.ToolCallTimeout,
		cfg.OverallTimeout,
	)

	server := httpapi.NewServer(logging.Component(log, "httpapi"), orch, store, cfg.Model)
	if err := server.Start(cfg.Host, cfg.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
		os.Exit(1)
	}
}
