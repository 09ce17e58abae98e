package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/formgate/formgate-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and persists it immediately.

Common keys:
  embedding.provider   openai or ollama
  embedding.model      embedding model name
  llm.provider         openai or ollama
  llm.model            chat model name
  corpus.dir           policy corpus directory
  retrieval.top_k      chunks retrieved per query
  retrieval.min_similarity  similarity cutoff in [0,1]
  validation.max_concurrent_field_checks  worker pool size`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// shownKeys are the keys config show always displays, set or not.
var shownKeys = []string{
	file.KeyEmbeddingProvider,
	file.KeyEmbeddingModel,
	file.KeyLLMProvider,
	file.KeyLLMModel,
	file.KeyVisionModel,
	file.KeyCorpusDir,
	file.KeyChunkSize,
	file.KeyChunkOverlap,
	file.KeyTopK,
	file.KeyMinSimilarity,
	file.KeyQueryStrategy,
	file.KeyMaxConcurrent,
	file.KeyReportsDir,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := make([]string, len(shownKeys))
	copy(keys, shownKeys)
	sort.Strings(keys)

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	for _, key := range keys {
		val, ok := configStore.Get(key)
		if !ok {
			cmd.Printf("  %-42s (default)\n", key)
			continue
		}
		cmd.Printf("  %-42s %v\n", key, val)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]

	// Store numbers as numbers so typed getters work.
	var value any = raw
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		value = i
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	cmd.Printf("%s = %v\n", key, value)
	return nil
}
