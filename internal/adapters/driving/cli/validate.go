package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formgate/formgate-cli/internal/core/domain"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Extract and validate a bank form",
	Long: `Extracts the fields of a bank form and validates each one against the
policy index. The form may be a scanned image (PNG, JPEG, WebP, GIF) or a
plain text file.

The run produces a report artifact under the reports directory and prints
a human-readable summary (or the full JSON with --json).`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the full report as JSON")
	rootCmd.AddCommand(validateCmd)
}

// mimeByExtension maps the supported file extensions to MIME types.
var mimeByExtension = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".txt":  "text/plain",
}

func runValidate(cmd *cobra.Command, args []string) error {
	if extractionService == nil || validationService == nil {
		return errors.New("validation pipeline not configured (set an API key or run 'formgate config')")
	}

	path := args[0]
	document, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read form: %w", err)
	}

	mimeType, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	ctx := context.Background()

	// Plain text skips the digitizer, so a local setup without a vision
	// model can still validate text forms.
	var record *domain.ExtractedFormRecord
	if mimeType == "text/plain" {
		record, err = extractionService.ExtractFromText(ctx, string(document), "")
	} else {
		record, err = extractionService.ExtractFromDocument(ctx, document, mimeType)
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	cmd.Printf("Extracted %d fields (form type: %s)\n", len(record.Fields), orDash(record.FormTypeGuess))

	report, err := validationService.Validate(ctx, *record)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if reportService != nil {
		artifactPath, err := reportService.Assemble(ctx, *report)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		cmd.Printf("Report saved: %s\n\n", artifactPath)
	}

	if validateJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if reportService != nil {
		cmd.Println(reportService.Render(*report))
	} else {
		cmd.Printf("Overall status: %s\n", report.OverallStatus)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
