// Command formgate validates bank forms against a policy corpus.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	aiollama "github.com/formgate/formgate-cli/internal/adapters/driven/ai/ollama"
	aiopenai "github.com/formgate/formgate-cli/internal/adapters/driven/ai/openai"
	"github.com/formgate/formgate-cli/internal/adapters/driven/config/file"
	embollama "github.com/formgate/formgate-cli/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/formgate/formgate-cli/internal/adapters/driven/embedding/openai"
	"github.com/formgate/formgate-cli/internal/adapters/driven/ocr/vision"
	"github.com/formgate/formgate-cli/internal/adapters/driven/storage/sqlite"
	"github.com/formgate/formgate-cli/internal/adapters/driving/cli"
	"github.com/formgate/formgate-cli/internal/chunker"
	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/core/services"
	"github.com/formgate/formgate-cli/internal/corpus"
	"github.com/formgate/formgate-cli/internal/index"
	"github.com/formgate/formgate-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultCorpusDir = "data/policy_docs"

func main() {
	// API keys may live in a .env file next to the binary.
	_ = godotenv.Load()

	cfg, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	deps := wire(cfg, store)
	cli.SetDeps(deps)
	cli.Execute()
}

// wire assembles the validation pipeline from configuration. Missing
// provider configuration leaves the corresponding service nil; commands
// report what is absent instead of failing at startup.
func wire(cfg *file.ConfigStore, store *sqlite.Store) cli.Deps {
	apiKey := os.Getenv("OPENAI_API_KEY")

	embedder := buildEmbedder(cfg, apiKey)
	extractor, reconciler := buildAI(cfg, apiKey)
	digitizer := buildDigitizer(cfg, apiKey)

	corpusDir := cfg.GetString(file.KeyCorpusDir)
	if corpusDir == "" {
		corpusDir = defaultCorpusDir
	}
	reportsDir := cfg.GetString(file.KeyReportsDir)
	if reportsDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			reportsDir = filepath.Join(home, ".formgate", "reports")
		} else {
			reportsDir = "reports"
		}
	}

	var chunkOpts []chunker.Option
	if size := cfg.GetInt(file.KeyChunkSize); size > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkSize(size))
	}
	if overlap := cfg.GetInt(file.KeyChunkOverlap); overlap > 0 {
		chunkOpts = append(chunkOpts, chunker.WithOverlap(overlap))
	}
	loader := corpus.NewLoader(corpusDir, chunker.New(chunkOpts...))

	idx := index.New(embedder)
	indexer := services.NewIndexService(loader, store.PolicyStore(), idx)

	// A previously built index restores from persisted chunks so validate
	// works without a rebuild in every session.
	if _, err := indexer.Restore(context.Background()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Index restore failed: %v", err)
	}

	retriever := services.NewRetriever(embedder, idx, retrievalOptions(cfg))

	deps := cli.Deps{
		Indexer:  indexer,
		Reporter: services.NewReportService(store.ReportStore(), reportsDir),
		Reports:  store.ReportStore(),
		Config:   cfg,
		Version:  version,
	}

	watcher := corpus.NewWatcher(corpusDir, func(ctx context.Context) {
		if _, err := indexer.Rebuild(ctx); err != nil {
			logger.Warn("Watch rebuild failed: %v", err)
		}
	})
	deps.Watch = watcher.Watch

	if extractor != nil {
		deps.Extraction = services.NewExtractionService(digitizer, extractor)
	}
	if reconciler != nil && embedder != nil {
		deps.Validation = services.NewValidationService(retriever, reconciler, services.ValidationOptions{
			MaxConcurrentFieldChecks: cfg.GetInt(file.KeyMaxConcurrent),
		})
	}

	return deps
}

// buildEmbedder selects the embedding provider: explicit configuration
// wins, otherwise OpenAI when a key is present, otherwise local Ollama.
func buildEmbedder(cfg *file.ConfigStore, apiKey string) driven.EmbeddingService {
	provider := cfg.GetString(file.KeyEmbeddingProvider)
	if provider == "" {
		if apiKey != "" {
			provider = "openai"
		} else {
			provider = "ollama"
		}
	}

	switch provider {
	case "openai":
		svc, err := embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:            apiKey,
			BaseURL:           cfg.GetString(file.KeyEmbeddingEndpoint),
			Model:             cfg.GetString(file.KeyEmbeddingModel),
			RequestsPerSecond: cfg.GetFloat(file.KeyRequestsPerSec),
		})
		if err != nil {
			logger.Warn("Embedding provider unavailable: %v", err)
			return nil
		}
		return svc
	default:
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL: cfg.GetString(file.KeyEmbeddingEndpoint),
			Model:   cfg.GetString(file.KeyEmbeddingModel),
		})
	}
}

// buildAI selects the chat provider for extraction and reconciliation.
func buildAI(cfg *file.ConfigStore, apiKey string) (driven.FieldExtractor, driven.Reconciler) {
	provider := cfg.GetString(file.KeyLLMProvider)
	if provider == "" {
		if apiKey != "" {
			provider = "openai"
		} else {
			provider = "ollama"
		}
	}

	switch provider {
	case "openai":
		aiCfg := aiopenai.Config{
			APIKey:            apiKey,
			BaseURL:           cfg.GetString(file.KeyLLMEndpoint),
			Model:             cfg.GetString(file.KeyLLMModel),
			RequestsPerSecond: cfg.GetFloat(file.KeyRequestsPerSec),
		}
		extractor, err := aiopenai.NewFieldExtractor(aiCfg)
		if err != nil {
			logger.Warn("LLM provider unavailable: %v", err)
			return nil, nil
		}
		reconciler, err := aiopenai.NewReconciler(aiCfg)
		if err != nil {
			logger.Warn("LLM provider unavailable: %v", err)
			return nil, nil
		}
		return extractor, reconciler
	default:
		aiCfg := aiollama.Config{
			BaseURL: cfg.GetString(file.KeyLLMEndpoint),
			Model:   cfg.GetString(file.KeyLLMModel),
		}
		return aiollama.NewFieldExtractor(aiCfg), aiollama.NewReconciler(aiCfg)
	}
}

// buildDigitizer wires the vision digitizer when a key is available.
// Without one, plain text forms still validate.
func buildDigitizer(cfg *file.ConfigStore, apiKey string) driven.Digitizer {
	if apiKey == "" {
		return nil
	}
	d, err := vision.NewDigitizer(vision.Config{
		APIKey:            apiKey,
		Model:             cfg.GetString(file.KeyVisionModel),
		RequestsPerSecond: cfg.GetFloat(file.KeyRequestsPerSec),
	})
	if err != nil {
		logger.Warn("Vision digitizer unavailable: %v", err)
		return nil
	}
	return d
}

// retrievalOptions reads the retrieval tunables, applying defaults.
func retrievalOptions(cfg *file.ConfigStore) domain.RetrievalOptions {
	opts := domain.RetrievalOptions{
		TopK:          cfg.GetInt(file.KeyTopK),
		MinSimilarity: cfg.GetFloat(file.KeyMinSimilarity),
		Strategy:      domain.QueryPerField,
	}
	if cfg.GetString(file.KeyQueryStrategy) == string(domain.QueryWholeRecord) {
		opts.Strategy = domain.QueryWholeRecord
	}
	return opts
}
