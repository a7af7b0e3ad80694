package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [preset]",
	Short: "Show high scores",
	Long: `Display the top 10 scores for a preset (default: guideline).

Examples:
  blocks scores
  blocks scores classic`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func runScores(cmd *cobra.Command, args []string) {
	preset := config.DefaultPresetName
	if len(args) > 0 {
		preset = args[0]
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	scores, err := store.TopScores(preset, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("High Scores - %s\n", preset)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'blocks play' to set the first high score!")
		return
	}

	fmt.Printf("  %-4s  %-10s  %-6s  %-6s  %s\n", "Rank", "Score", "Lines", "Level", "Date")
	fmt.Printf("  %-4s  %-10s  %-6s  %-6s  %s\n", "----", "-----", "-----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %-6d  %-6d  %s\n",
			i+1, entry.Score, entry.Lines, entry.Level, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if high, err := store.HighScore(preset); err == nil {
		fmt.Printf("Best: %d\n", high)
	}
}
