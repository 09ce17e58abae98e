// Package corpus loads the policy document collection the semantic index
// is built from. The corpus is a static directory of tagged text files;
// generating it (scraping, authoring) is out of scope.
package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/formgate/formgate-cli/internal/chunker"
	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.CorpusSource = (*Loader)(nil)

// categoryHeader tags a policy file with a retrieval category, e.g.
// "category: mandatory" on the first line.
const categoryHeader = "category:"

var whitespace = regexp.MustCompile(`\s+`)

// Loader reads policy documents from a directory and chunks them.
//
// File naming carries the form type: "policy_savings_account.txt" tags its
// chunks with form type "savings account". An optional "category:" header
// line tags the chunk category; it defaults to "general".
type Loader struct {
	dir     string
	chunker *chunker.Chunker
}

// NewLoader creates a corpus loader over the given directory.
func NewLoader(dir string, c *chunker.Chunker) *Loader {
	return &Loader{
		dir:     dir,
		chunker: c,
	}
}

// LoadChunks reads every .txt policy file and returns its chunks in a
// stable order (sorted file name, then document order).
func (l *Loader) LoadChunks(ctx context.Context) ([]domain.PolicyChunk, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var chunks []domain.PolicyChunk
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := os.ReadFile(filepath.Join(l.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read policy %s: %w", name, err)
		}

		text, category := splitHeader(string(content))
		text = cleanText(text)
		formType := formTypeFromName(name)

		for _, part := range l.chunker.Split(text) {
			chunks = append(chunks, domain.PolicyChunk{
				ID:             uuid.New().String(),
				SourceDocument: name,
				Text:           part,
				FormType:       formType,
				Category:       category,
			})
		}
	}

	logger.Debug("Corpus: %d chunks from %d files", len(chunks), len(names))
	return chunks, nil
}

// splitHeader peels an optional "category:" header off the document and
// returns the remaining text plus the category (default "general").
func splitHeader(content string) (text, category string) {
	category = domain.CategoryGeneral
	line, rest, found := strings.Cut(content, "\n")
	trimmed := strings.TrimSpace(strings.ToLower(line))
	if found && strings.HasPrefix(trimmed, categoryHeader) {
		category = strings.TrimSpace(trimmed[len(categoryHeader):])
		return rest, category
	}
	return content, category
}

// cleanText collapses whitespace so chunk boundaries fall on word edges.
func cleanText(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// formTypeFromName derives the form type tag from the file name:
// "policy_savings_account.txt" -> "savings account".
func formTypeFromName(name string) string {
	base := strings.TrimSuffix(name, ".txt")
	base = strings.TrimPrefix(base, "policy_")
	return strings.ReplaceAll(base, "_", " ")
}
