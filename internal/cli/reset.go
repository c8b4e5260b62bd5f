package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tatianab/chronicle/internal/config"
	"github.com/tatianab/chronicle/internal/models"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the saved game to a fresh starting state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		game, err := models.Load(cfg.SaveDir)
		if err != nil {
			return err
		}
		if err := game.ResetToDefaults(); err != nil {
			return err
		}
		fmt.Printf("New game %s created in %s\n", game.Meta.GameID, cfg.SaveDir)
		return nil
	},
}
