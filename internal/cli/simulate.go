package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/spf13/cobra"
	"github.com/tatianab/chronicle/internal/models"
	"google.golang.org/api/option"
)

var simulateTurns int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Let a second model play the game for a number of turns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, game, eng, err := setup(ctx)
		if err != nil {
			return err
		}
		defer eng.Close()

		playerClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			return fmt.Errorf("create player client: %w", err)
		}
		defer playerClient.Close()
		playerModel := playerClient.GenerativeModel(cfg.Model)

		for turn := 1; turn <= simulateTurns; turn++ {
			fmt.Printf("--- Turn %d ---\n", turn)

			action := playerAction(ctx, playerModel, game)
			fmt.Printf("Ruler decrees: %s\n", action)

			result, err := eng.ProcessTurn(ctx, game, action)
			if err != nil {
				return fmt.Errorf("turn %d: %w", turn, err)
			}
			fmt.Println(result.Narrative)
			for _, reason := range result.Validation.Reasons() {
				fmt.Printf("  rejected: %s\n", reason)
			}
			fmt.Printf("Population=%d Food=%d Wealth=%d\n\n",
				models.IntAt(game.Civilization, "population"),
				models.IntAt(game.Civilization, "resources", "food"),
				models.IntAt(game.Civilization, "resources", "wealth"),
			)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateTurns, "turns", 10, "number of turns to simulate")
}

func playerAction(ctx context.Context, model *genai.GenerativeModel, game *models.GameState) string {
	prompt := fmt.Sprintf(`You rule %s, a %s civilization of %d people.
Food: %d. Wealth: %d.

What do you decree this year? Return ONLY the decree as one short sentence.`,
		models.StringAt(game.Civilization, "meta", "name"),
		models.StringAt(game.Civilization, "meta", "era"),
		models.IntAt(game.Civilization, "population"),
		models.IntAt(game.Civilization, "resources", "food"),
		models.IntAt(game.Civilization, "resources", "wealth"),
	)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil || len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "focus on gathering food"
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}
