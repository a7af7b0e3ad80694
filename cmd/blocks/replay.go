package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/platform/tui"
	"github.com/vovakirdan/tui-blocks/internal/replay"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

var replayCmd = &cobra.Command{
	Use:   "replay [id]",
	Short: "List or watch stored replays",
	Long: `Without arguments, lists the most recent replays.
With an ID, plays that recording back at game speed.

Playback controls:
  Enter      - Pause/resume
  Q/Esc      - Quit

Examples:
  blocks replay
  blocks replay 3`,
	Args: cobra.MaximumNArgs(1),
	Run:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 0 {
		listReplays(store)
		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid replay ID %q\n", args[0])
		os.Exit(1)
	}

	entry, err := store.Replay(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading replay: %v\n", err)
		os.Exit(1)
	}
	if entry == nil {
		fmt.Fprintf(os.Stderr, "Error: no replay with ID %d\n", id)
		os.Exit(1)
	}

	r, err := replay.Unmarshal(entry.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing replay: %v\n", err)
		os.Exit(1)
	}

	if err := tui.RunReplay(r, flagFPS); err != nil {
		fmt.Fprintf(os.Stderr, "Error running playback: %v\n", err)
		os.Exit(1)
	}
}

func listReplays(store *storage.Store) {
	entries, err := store.RecentReplays(20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing replays: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No replays recorded yet.")
		fmt.Println()
		fmt.Println("Finish a game with 'blocks play' to record one.")
		return
	}

	fmt.Println("Recent replays:")
	fmt.Println()
	fmt.Printf("  %-4s  %-10s  %-10s  %-6s  %s\n", "ID", "Preset", "Score", "Lines", "Date")
	fmt.Printf("  %-4s  %-10s  %-10s  %-6s  %s\n", "--", "------", "-----", "-----", "----")
	for _, e := range entries {
		fmt.Printf("  %-4d  %-10s  %-10d  %-6d  %s\n",
			e.ID, e.Preset, e.Score, e.Lines, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()
	fmt.Println("Run 'blocks replay <id>' to watch one.")
}
