// Package cli wires the chronicle commands.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tatianab/chronicle/internal/config"
	"github.com/tatianab/chronicle/internal/engine"
	"github.com/tatianab/chronicle/internal/models"
)

var rootCmd = &cobra.Command{
	Use:   "chronicle",
	Short: "Chronicle: an LLM-narrated civilization simulation",
	Long: `Chronicle is a civilization simulation narrated by a language model.
Issue decrees one turn at a time, or leap five hundred years at once.
The game state lives in per-document YAML files under the save directory.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(resetCmd)
}

func initLogging() {
	level := slog.LevelInfo
	if os.Getenv("CHRONICLE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// setup loads the configuration, the saved game and the narrative engine.
func setup(ctx context.Context) (*config.Config, *models.GameState, *engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	game, err := models.Load(cfg.SaveDir)
	if err != nil {
		return nil, nil, nil, err
	}
	eng, err := engine.New(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, game, eng, nil
}
