package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/core/ports/driving"
	"github.com/formgate/formgate-cli/internal/logger"
)

// Ensure ValidationService implements the interface.
var _ driving.ValidationEngine = (*ValidationService)(nil)

// DefaultMaxConcurrentFieldChecks bounds the field-check worker pool when
// no limit is configured.
const DefaultMaxConcurrentFieldChecks = 4

// evidenceForReconcile caps how many retrieved chunks are handed to the
// reconciliation collaborator in one call.
const evidenceForReconcile = 3

// ValidationOptions configures the validation engine.
type ValidationOptions struct {
	// MaxConcurrentFieldChecks bounds the per-field worker pool.
	MaxConcurrentFieldChecks int
}

// ValidationService produces a ValidationReport from an ExtractedFormRecord.
//
// Field checks are independent: they run concurrently under a bounded pool,
// one field's failure never blocks another, and findings are re-sorted into
// record order before aggregation.
type ValidationService struct {
	retriever  *Retriever
	reconciler driven.Reconciler
	opts       ValidationOptions
}

// NewValidationService creates a new validation engine.
func NewValidationService(retriever *Retriever, reconciler driven.Reconciler, opts ValidationOptions) *ValidationService {
	if opts.MaxConcurrentFieldChecks <= 0 {
		opts.MaxConcurrentFieldChecks = DefaultMaxConcurrentFieldChecks
	}
	return &ValidationService{
		retriever:  retriever,
		reconciler: reconciler,
		opts:       opts,
	}
}

// Validate checks every field of the record against the policy corpus and
// appends a document-level finding last.
//
// Cancellation between field checks degrades the remaining findings to
// indeterminate; the run still yields a complete report.
func (s *ValidationService) Validate(
	ctx context.Context, record domain.ExtractedFormRecord,
) (*domain.ValidationReport, error) {
	logger.Section("Validation Run")
	logger.Info("Validating %d fields (form type: %q)", len(record.Fields), record.FormTypeGuess)

	// Findings are collected by original field position; the document-level
	// finding takes the last slot. Output order never depends on
	// completion order.
	findings := make([]domain.ValidationFinding, len(record.Fields)+1)

	// WHOLE_RECORD strategy retrieves once for the record summary and
	// shares that evidence across every field check.
	var shared []domain.RetrievalResult
	var sharedErr error
	if s.retriever.Options().Strategy == domain.QueryWholeRecord {
		shared, sharedErr = s.retriever.Retrieve(ctx, summarise(record))
	}

	sem := make(chan struct{}, s.opts.MaxConcurrentFieldChecks)
	var wg sync.WaitGroup

	for i := range record.Fields {
		// A run may be cancelled between any two field checks.
		if ctx.Err() != nil {
			findings[i] = cancelledFinding(record.Fields[i].Name)
			continue
		}

		wg.Add(1)
		go func(pos int, field domain.ExtractedField) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			finding := s.checkField(ctx, record, field, shared, sharedErr)

			// In-flight results of a cancelled run are discarded.
			if ctx.Err() != nil {
				finding = cancelledFinding(field.Name)
			}
			findings[pos] = finding
		}(i, record.Fields[i])
	}

	wg.Wait()

	findings[len(record.Fields)] = s.checkRecord(ctx, record)

	report := &domain.ValidationReport{
		ID:            uuid.New().String(),
		OverallStatus: domain.AggregateStatus(findings),
		Findings:      findings,
		GeneratedAt:   time.Now().UTC(),
		Record:        record,
	}

	logger.Info("Validation complete: %s", report.OverallStatus)
	return report, nil
}

// checkField evaluates a single field against the policy corpus.
func (s *ValidationService) checkField(
	ctx context.Context,
	record domain.ExtractedFormRecord,
	field domain.ExtractedField,
	shared []domain.RetrievalResult,
	sharedErr error,
) domain.ValidationFinding {
	evidence := shared
	err := sharedErr

	if s.retriever.Options().Strategy != domain.QueryWholeRecord {
		evidence, err = s.retriever.Retrieve(ctx, fieldQuery(record, field))
	}

	if err != nil {
		// A retrieval failure resolves only this finding; the run goes on.
		logger.Warn("Field %q: retrieval failed: %v", field.Name, err)
		return domain.ValidationFinding{
			FieldName:   field.Name,
			Status:      domain.StatusIndeterminate,
			Evidence:    []domain.RetrievalResult{},
			Explanation: fmt.Sprintf("retrieval failed: %v", err),
		}
	}

	if len(evidence) == 0 {
		return domain.ValidationFinding{
			FieldName:   field.Name,
			Status:      domain.StatusIndeterminate,
			Evidence:    []domain.RetrievalResult{},
			Explanation: "no matching policy was found for this field",
		}
	}

	if !field.Filled() {
		for _, hit := range evidence {
			if hit.Chunk.Category == domain.CategoryMandatory {
				return domain.ValidationFinding{
					FieldName: field.Name,
					Status:    domain.StatusMissing,
					Evidence:  evidence,
					Explanation: fmt.Sprintf("field %q is empty but policy %s marks it as mandatory",
						field.Name, hit.Chunk.SourceDocument),
				}
			}
		}
		// Empty but not known-mandatory: nothing to reconcile against.
		return domain.ValidationFinding{
			FieldName:   field.Name,
			Status:      domain.StatusIndeterminate,
			Evidence:    evidence,
			Explanation: "field is empty and no retrieved policy marks it as mandatory",
		}
	}

	verdict, err := s.reconciler.Reconcile(ctx, field.Name, field.Value, policyText(evidence))
	if err != nil {
		// Partial-failure isolation: one bad field never aborts the run.
		logger.Warn("Field %q: reconciliation failed: %v", field.Name, err)
		return domain.ValidationFinding{
			FieldName:   field.Name,
			Status:      domain.StatusIndeterminate,
			Evidence:    evidence,
			Explanation: fmt.Sprintf("reconciliation failed: %v", err),
		}
	}

	status := domain.StatusViolation
	if verdict.Satisfied {
		status = domain.StatusSatisfied
	}
	return domain.ValidationFinding{
		FieldName:   field.Name,
		Status:      status,
		Evidence:    evidence,
		Explanation: verdict.Rationale,
	}
}

// checkRecord runs the document-level pass to catch policy statements that
// apply to the whole form rather than a single field.
func (s *ValidationService) checkRecord(
	ctx context.Context, record domain.ExtractedFormRecord,
) domain.ValidationFinding {
	if ctx.Err() != nil {
		return cancelledFinding("")
	}

	evidence, err := s.retriever.Retrieve(ctx, summarise(record))
	if err != nil {
		logger.Warn("Record-level retrieval failed: %v", err)
		return domain.ValidationFinding{
			Status:      domain.StatusIndeterminate,
			Evidence:    []domain.RetrievalResult{},
			Explanation: fmt.Sprintf("retrieval failed: %v", err),
		}
	}
	if len(evidence) == 0 {
		return domain.ValidationFinding{
			Status:      domain.StatusIndeterminate,
			Evidence:    []domain.RetrievalResult{},
			Explanation: "no matching policy was found for the record",
		}
	}

	verdict, err := s.reconciler.Reconcile(ctx, "", summarise(record), policyText(evidence))
	if err != nil {
		logger.Warn("Record-level reconciliation failed: %v", err)
		return domain.ValidationFinding{
			Status:      domain.StatusIndeterminate,
			Evidence:    evidence,
			Explanation: fmt.Sprintf("reconciliation failed: %v", err),
		}
	}

	status := domain.StatusViolation
	if verdict.Satisfied {
		status = domain.StatusSatisfied
	}
	return domain.ValidationFinding{
		Status:      status,
		Evidence:    evidence,
		Explanation: verdict.Rationale,
	}
}

// fieldQuery builds the retrieval query for a single field.
func fieldQuery(record domain.ExtractedFormRecord, field domain.ExtractedField) string {
	var b strings.Builder
	if record.FormTypeGuess != "" {
		b.WriteString(record.FormTypeGuess)
		b.WriteString(" ")
	}
	b.WriteString(field.Name)
	if field.Filled() {
		b.WriteString(": ")
		b.WriteString(field.Value)
	} else {
		b.WriteString(" requirements")
	}
	return b.String()
}

// summarise synthesizes a whole-record query from the form type and the
// filled field values.
func summarise(record domain.ExtractedFormRecord) string {
	var b strings.Builder
	if record.FormTypeGuess != "" {
		b.WriteString(record.FormTypeGuess)
	} else {
		b.WriteString("bank form")
	}
	b.WriteString(" validation rules eligibility requirements.")
	for _, f := range record.Fields {
		if !f.Filled() {
			continue
		}
		b.WriteString(" ")
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString(".")
	}
	return b.String()
}

// policyText joins the top retrieved chunks into the context handed to the
// reconciliation collaborator.
func policyText(evidence []domain.RetrievalResult) string {
	n := len(evidence)
	if n > evidenceForReconcile {
		n = evidenceForReconcile
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = evidence[i].Chunk.Text
	}
	return strings.Join(parts, "\n\n")
}

// cancelledFinding marks a field that was not (or no longer) evaluated
// because the run was cancelled.
func cancelledFinding(fieldName string) domain.ValidationFinding {
	return domain.ValidationFinding{
		FieldName:   fieldName,
		Status:      domain.StatusIndeterminate,
		Evidence:    []domain.RetrievalResult{},
		Explanation: "validation run was cancelled before this field was evaluated",
	}
}
