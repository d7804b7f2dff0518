package cmd

import (
	"fmt"

	"ankisync/core/anki"
	"ankisync/core/config"
	"ankisync/core/logger"
	"ankisync/feature/sync"

	"github.com/spf13/cobra"
)

// decksCmd lists the decks known to the running Anki instance.
var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List the decks known to Anki",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer l.Sync()

		client := anki.NewClient(cfg.Anki)
		names, err := sync.NewService(client, l).Decks(cmd.Context())
		if err != nil {
			return err
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(decksCmd)
}
