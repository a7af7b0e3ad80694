package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/platform/tui"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

// The playfield plus sidebar need roughly this much room.
const (
	minTermWidth  = 40
	minTermHeight = 24
)

var flagPreset string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start a game with the selected preset.

Controls:
  Left/Right or A/D  - Move
  Down or S          - Soft drop
  Up or X            - Rotate
  Space              - Hard drop
  C                  - Hold
  R                  - Restart (after game over)
  Q/Ctrl+C           - Quit

Finished games are saved to the scores database together with a replay.

Examples:
  blocks play
  blocks play --preset classic
  blocks play --seed 42`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPreset, "preset", config.DefaultPresetName, "Gameplay preset")
}

func runPlay(cmd *cobra.Command, args []string) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		if w < minTermWidth || h < minTermHeight {
			fmt.Fprintf(os.Stderr, "Terminal too small: need at least %dx%d, have %dx%d\n",
				minTermWidth, minTermHeight, w, h)
			os.Exit(1)
		}
	}

	cfg := core.RuntimeConfig{
		Preset:   flagPreset,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage, the game still works
		store = nil
	}

	runErr := tui.Run(store, cfg)

	if store != nil {
		store.Close()
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
