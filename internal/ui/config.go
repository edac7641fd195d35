package ui

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rumos-automatic/tasktimeflow/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the active configuration",
		Long: `Print the active configuration and where it came from.

With --init, write the current configuration to the default config file
if none exists yet.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			configPath := config.DefaultConfigPath()
			fmt.Printf("Config file: %s\n\n", configPath)

			if initFile {
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					if err := a.config.SaveTo(configPath); err != nil {
						return fmt.Errorf("saving config: %w", err)
					}
					fmt.Printf("Created %s\n\n", configPath)
				} else {
					fmt.Println("Config file already exists; leaving it untouched.")
				}
			}

			printConfig(a.config)
			return nil
		},
	}

	cmd.Flags().BoolVar(&initFile, "init", false, "Create the config file with current values if missing")

	return cmd
}

func printConfig(cfg *config.Config) {
	fmt.Println(formatHeader("[user]"))
	fmt.Printf("  id                      = %s\n", cfg.User.ID)

	fmt.Println(formatHeader("[schedule]"))
	fmt.Printf("  work_start              = %s\n", cfg.Schedule.WorkStart)
	fmt.Printf("  work_end                = %s\n", cfg.Schedule.WorkEnd)
	fmt.Printf("  buffer_minutes          = %d\n", cfg.Schedule.BufferMinutes)
	fmt.Printf("  grid_interval_minutes   = %d\n", cfg.Schedule.GridIntervalMinutes)
	fmt.Printf("  break_minutes           = %d\n", cfg.Schedule.BreakMinutes)
	fmt.Printf("  max_consecutive_minutes = %d\n", cfg.Schedule.MaxConsecutiveMinutes)

	fmt.Println(formatHeader("[llm]"))
	fmt.Printf("  provider                = %s\n", cfg.LLM.Provider)
	fmt.Printf("  model                   = %s\n", cfg.LLM.Model)
	fmt.Printf("  base_url                = %s\n", cfg.LLM.BaseURL)

	fmt.Println(formatHeader("[storage]"))
	fmt.Printf("  db_path                 = %s\n", cfg.Storage.DBPath)
}
