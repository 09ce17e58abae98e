package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the policy index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the policy index from the corpus directory",
	Long: `Loads every policy document from the corpus directory, chunks and
embeds it, and swaps in a fresh index snapshot. The embedded chunks are
persisted so later runs restore the index without re-embedding.`,
	RunE: runIndexRebuild,
}

var indexWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the corpus directory and rebuild on change",
	Long: `Rebuilds the index, then watches the corpus directory and rebuilds
again after each batch of file changes. Runs until interrupted.`,
	RunE: runIndexWatch,
}

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexWatchCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	cmd.Println("Rebuilding policy index...")

	chunks, err := indexService.Rebuild(context.Background())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	cmd.Printf("Index rebuilt: %d chunks.\n", chunks)
	return nil
}

func runIndexWatch(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if corpusWatch == nil {
		return errors.New("corpus watcher not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chunks, err := indexService.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("initial rebuild failed: %w", err)
	}
	cmd.Printf("Index built: %d chunks. Watching for changes (Ctrl-C to stop)...\n", chunks)

	if err := corpusWatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
