package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"ankisync/core/anki"
	"ankisync/core/config"
	"ankisync/core/logger"
	"ankisync/core/utils"
	"ankisync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	rootDeck    string
	dryRun      bool
	fromScratch bool
	cardLimit   int
	yesConfirm  bool
)

// syncCmd runs the markdown-to-Anki pipeline for a file or directory.
var syncCmd = &cobra.Command{
	Use:   "sync <path>",
	Short: "Sync markdown cards to Anki (file or directory)",
	Long: `Sync parses markdown notes, creates or updates the matching Anki notes
through AnkiConnect, and writes the ids of newly created cards back into
the files.

Examples:
  # Preview what a run would do
  ankisync sync notes/go.md --dry-run

  # Sync a whole vault under a custom root deck
  ankisync sync ~/vault --root-deck Knowledge

  # Recreate every card (auto-confirmed, e.g. after wiping the collection)
  ankisync sync ~/vault --from-scratch --yes

  # Only the first 10 cards of a file
  ankisync sync notes/go.md --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&rootDeck, "root-deck", "Ankify", "Root deck for documents that do not set their own")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan only; do not touch Anki or the files")
	syncCmd.Flags().BoolVar(&fromScratch, "from-scratch", false, "Recreate every card instead of updating existing ones")
	syncCmd.Flags().IntVar(&cardLimit, "limit", 0, "Maximum number of cards to process (0 = no limit)")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm from-scratch runs (non-interactive)")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	opts := sync.Options{
		RootDeck:    rootDeck,
		DryRun:      dryRun,
		FromScratch: fromScratch,
		Limit:       cardLimit,
	}

	if opts.FromScratch && !opts.DryRun {
		if !confirmFromScratch() {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
	}

	client := anki.NewClient(cfg.Anki)
	service := sync.NewService(client, l)

	l.Info("Starting sync",
		zap.String("path", args[0]),
		zap.String("root_deck", opts.RootDeck),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("from_scratch", opts.FromScratch),
	)

	reports, runErr := service.SyncPath(cmd.Context(), args[0], opts)
	if runErr != nil && len(reports) == 0 {
		return runErr
	}

	printSyncReports(l, reports, opts)
	return runErr
}

// printSyncReports prints per-file results and a run summary using the logger.
func printSyncReports(l *zap.Logger, reports []*sync.FileReport, opts sync.Options) {
	var totals sync.Summary

	for _, r := range reports {
		if r.Error != "" {
			l.Error("File failed", zap.String("path", r.Path), zap.String("error", r.Error))
		}
		if r.Plan == nil {
			continue
		}
		if opts.DryRun {
			printPlannedActions(l, r)
		}

		s := r.Plan.Summary
		totals.TotalCards += s.TotalCards
		totals.Creates += s.Creates
		totals.Updates += s.Updates
		totals.Skips += s.Skips

		l.Info("File report",
			zap.String("path", r.Path),
			zap.Int("cards", s.TotalCards),
			zap.Int("creates", s.Creates),
			zap.Int("updates", s.Updates),
			zap.Int("skips", s.Skips),
			zap.Bool("rewritten", r.Rewritten),
		)
	}

	l.Info("Run summary",
		zap.Int("files", len(reports)),
		zap.Int("cards", totals.TotalCards),
		zap.Int("creates", totals.Creates),
		zap.Int("updates", totals.Updates),
		zap.Int("skips", totals.Skips),
		zap.Bool("dry_run", opts.DryRun),
	)
}

// printPlannedActions lists every planned action with a question preview.
func printPlannedActions(l *zap.Logger, r *sync.FileReport) {
	for i := range r.Plan.Actions {
		a := &r.Plan.Actions[i]
		l.Info("Planned action",
			zap.String("action", string(a.Type)),
			zap.String("deck", a.DeckPath),
			zap.String("card", a.Title),
			zap.String("question", utils.Truncate(utils.FirstLine(a.Question()), 72)),
		)
	}
}

// confirmFromScratch prompts the user for confirmation or uses the --yes flag.
func confirmFromScratch() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  From-scratch recreates every card in Anki. Type 'yes' to continue: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
