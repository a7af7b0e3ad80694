package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/config"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List gameplay presets",
	Long: `Shows the builtin gameplay presets. Custom presets can be placed
as YAML files in ~/.blocks/presets/ or ./presets/ and selected by file
name.`,
	Run: runPresets,
}

func runPresets(cmd *cobra.Command, args []string) {
	fmt.Println("Available presets:")
	fmt.Println()

	for _, name := range config.PresetNames() {
		p := config.LoadPreset(name)
		marker := " "
		if name == config.DefaultPresetName {
			marker = "*"
		}
		fmt.Printf("  %s %-12s  lock %.0fms, DAS %.0fms, ARR %.0fms\n",
			marker, name, p.LockDelayMs, p.DASMs, p.ARRMs)
	}

	fmt.Println()
	fmt.Println("Run 'blocks play --preset <name>' to use one.")
}
