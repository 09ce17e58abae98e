package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/core/ports/driving"
	"github.com/formgate/formgate-cli/internal/logger"
)

// Ensure ReportService implements the interface.
var _ driving.ReportAssembler = (*ReportService)(nil)

// reportArtifact is the persisted report format: the report itself plus
// derived summary counts for display. This is the sole externally consumed
// output of a validation run.
type reportArtifact struct {
	domain.ValidationReport
	Summary reportSummary `json:"summary"`
}

// reportSummary holds derived per-status finding counts.
type reportSummary struct {
	Satisfied     int `json:"satisfied"`
	Missing       int `json:"missing"`
	Violations    int `json:"violations"`
	Indeterminate int `json:"indeterminate"`
}

// ReportService serialises validation reports into persisted artifacts.
// Assembly is a pure function of its inputs; the only side effects are the
// file write and the store save.
type ReportService struct {
	store      driven.ReportStore
	reportsDir string
}

// NewReportService creates a new report assembler writing artifacts under
// reportsDir. The store is optional.
func NewReportService(store driven.ReportStore, reportsDir string) *ReportService {
	return &ReportService{
		store:      store,
		reportsDir: reportsDir,
	}
}

// Assemble writes the JSON artifact and persists the report.
func (s *ReportService) Assemble(ctx context.Context, report domain.ValidationReport) (string, error) {
	artifact := reportArtifact{
		ValidationReport: report,
		Summary:          summarize(report.Findings),
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(s.reportsDir, 0o700); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	path := filepath.Join(s.reportsDir, fmt.Sprintf("validation_report_%s.json", report.ID))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if s.store != nil {
		if err := s.store.Save(ctx, report); err != nil {
			return "", fmt.Errorf("save report: %w", err)
		}
	}

	logger.Info("Report written to %s", path)
	return path, nil
}

// Render produces the human-readable text rendering of a report.
func (s *ReportService) Render(report domain.ValidationReport) string {
	summary := summarize(report.Findings)

	var b strings.Builder
	b.WriteString("BANK FORM VALIDATION REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Report ID:  %s\n", report.ID)
	fmt.Fprintf(&b, "Form Type:  %s\n", orUnknown(report.Record.FormTypeGuess))
	fmt.Fprintf(&b, "Status:     %s\n", report.OverallStatus)
	fmt.Fprintf(&b, "Generated:  %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Findings: %d satisfied, %d missing, %d violations, %d indeterminate\n\n",
		summary.Satisfied, summary.Missing, summary.Violations, summary.Indeterminate)

	for _, f := range report.Findings {
		name := f.FieldName
		if name == "" {
			name = "(document)"
		}
		fmt.Fprintf(&b, "  [%s] %s\n", f.Status, name)
		if f.Explanation != "" {
			fmt.Fprintf(&b, "      %s\n", f.Explanation)
		}
		for _, ev := range f.Evidence {
			fmt.Fprintf(&b, "      evidence: %s (%.2f)\n", ev.ChunkID, ev.Score)
		}
	}

	return b.String()
}

// summarize computes the derived per-status counts.
func summarize(findings []domain.ValidationFinding) reportSummary {
	counts := domain.CountByStatus(findings)
	return reportSummary{
		Satisfied:     counts[domain.StatusSatisfied],
		Missing:       counts[domain.StatusMissing],
		Violations:    counts[domain.StatusViolation],
		Indeterminate: counts[domain.StatusIndeterminate],
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
