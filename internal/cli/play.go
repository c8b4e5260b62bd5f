package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tatianab/chronicle/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, game, eng, err := setup(ctx)
		if err != nil {
			return err
		}
		defer eng.Close()

		return tui.Run(eng, game)
	},
}
