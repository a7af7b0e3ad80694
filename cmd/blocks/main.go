// blocks is a terminal falling-block puzzle game with replays, high
// scores and online versus over SSH.
//
// Usage:
//
//	blocks play                - Play a game
//	blocks replay [id]         - List or watch stored replays
//	blocks scores [preset]     - Show high scores
//	blocks presets             - List gameplay presets
//	blocks serve               - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible games (0 = random)
//	--db <path>     - Set database path (default: ~/.blocks/scores.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   uint32
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Falling-block puzzle for your terminal",
	Long: `blocks is a terminal falling-block puzzle game. Games are
deterministic: the same seed and inputs always produce the same run,
which powers the replay system and online versus play.

Available commands:
  play     - Play a game
  replay   - List or watch stored replays
  scores   - View high scores
  presets  - List gameplay presets
  serve    - Start SSH server for remote play

Examples:
  blocks play
  blocks play --preset classic --seed 42
  blocks replay
  blocks replay 3
  blocks scores guideline
  blocks serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Uint32Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.blocks/scores.db", "Path to scores database")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(serveCmd)
}
