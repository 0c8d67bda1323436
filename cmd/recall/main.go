// Package main implements the recall CLI: a memory engine for
// conversational agents, with commands for remembering conversations,
// searching stored memories, chatting with recall of past exchanges, and
// serving the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/pkg/config"
	"github.com/fyrsmithlabs/recall/internal/logging"
	"github.com/fyrsmithlabs/recall/pkg/memory"
)

var (
	configPath string
	userID     string
	agentID    string

	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Long-term memory for conversational agents",
	Long: `recall extracts the facts worth remembering from conversations,
stores them as embeddings, and retrieves them by semantic similarity.

Configuration is read from ~/.config/recall/config.yaml and RECALL_*
environment variables. See the README for the full reference.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/recall/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "user scope override")
	rootCmd.PersistentFlags().StringVar(&agentID, "agent", "", "agent scope override")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
}

// bootstrap loads config, builds the logger, and opens the engine.
func bootstrap() (*config.Config, *zap.Logger, *memory.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	engine, err := memory.Open(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return cfg, logger, engine, nil
}

// scopeOpts turns the --user/--agent flags into engine options.
func scopeOpts() []memory.ScopeOption {
	var opts []memory.ScopeOption
	if userID != "" {
		opts = append(opts, memory.WithUserID(userID))
	}
	if agentID != "" {
		opts = append(opts, memory.WithAgentID(agentID))
	}
	return opts
}
