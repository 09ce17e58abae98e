package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
)

func newEngine(index *mockIndex, reconciler *mockReconciler, opts domain.RetrievalOptions) *ValidationService {
	if opts.TopK == 0 {
		opts.TopK = 5
	}
	retriever := NewRetriever(&mockEmbeddingService{embedding: []float32{1, 0}}, index, opts)
	return NewValidationService(retriever, reconciler, ValidationOptions{})
}

func loanRecord(fields ...domain.ExtractedField) domain.ExtractedFormRecord {
	return domain.ExtractedFormRecord{
		FormTypeGuess: "personal loan",
		Fields:        fields,
		RawTextDigest: "digest",
	}
}

func TestValidate_AllSatisfiedIsCompliant(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.8)}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true, Rationale: "within limits"}}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	report, err := engine.Validate(context.Background(), loanRecord(
		domain.ExtractedField{Name: "Age", Value: "25", Confidence: 0.9},
		domain.ExtractedField{Name: "PAN", Value: "ABCDE1234F", Confidence: 0.9},
	))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompliant, report.OverallStatus)
	require.Len(t, report.Findings, 3, "one per field plus the document-level finding")
	assert.Equal(t, domain.StatusSatisfied, report.Findings[0].Status)
	assert.Equal(t, domain.StatusSatisfied, report.Findings[1].Status)
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestValidate_ViolationMakesNonCompliant(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.8)}
	reconciler := &mockReconciler{
		verdict: driven.Verdict{Satisfied: true},
		verdictFor: map[string]driven.Verdict{
			"Age": {Satisfied: false, Rationale: "applicant is under 18"},
		},
	}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	report, err := engine.Validate(context.Background(), loanRecord(
		domain.ExtractedField{Name: "Age", Value: "17", Confidence: 0.9},
		domain.ExtractedField{Name: "Name", Value: "John", Confidence: 0.9},
	))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusNonCompliant, report.OverallStatus)
	assert.Equal(t, domain.StatusViolation, report.Findings[0].Status)
	assert.Contains(t, report.Findings[0].Explanation, "under 18")
}

func TestValidate_EmptyMandatoryFieldIsMissing(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryMandatory, 0.8)}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true}}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	report, err := engine.Validate(context.Background(), loanRecord(
		domain.ExtractedField{Name: "Signature", Value: "", Confidence: 0.9},
	))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusNeedsReview, report.OverallStatus)
	assert.Equal(t, domain.StatusMissing, report.Findings[0].Status)
	assert.NotContains(t, reconciler.calledFields, "Signature",
		"empty fields are never reconciled")
}

func TestValidate_EmptyNonMandatoryFieldIsIndeterminate(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.8)}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true}}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	report, err := engine.Validate(context.Background(), loanRecord(
		domain.ExtractedField{Name: "Middle Name", Value: "", Confidence: 0.9},
	))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndeterminate, report.Findings[0].Status)
}

func TestValidate_NoEvidenceIsIndeterminate(t *testing.T) {
	// Every hit scores below the cutoff, so no evidence survives.
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.1)}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true}}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	report, err := engine.Validate(context.Background(), loanRecord(
		domain.ExtractedField{Name: "Age", Value: "25", Confidence: 0.9},
	))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndeterminate, report.Findings[0].Status)
	assert.NotNil(t, report.Findings[0].Evidence)
	assert.Empty(t, report.Findings[0].Evidence)
}

func TestValidate_ReconcilerFailureIsolatedToOneFinding(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.8)}
	reconciler := &mockReconciler{
		verdict: driven.Verdict{Satisfied: true},
		errFor:  map[string]error{"Age": domain.ErrLLMTimeout},
	}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	report, err := engine.Validate(context.Background(), loanRecord(
		domain.ExtractedField{Name: "Age", Value: "25", Confidence: 0.9},
		domain.ExtractedField{Name: "Name", Value: "John", Confidence: 0.9},
	))

	require.NoError(t, err, "one field's failure never aborts the run")
	assert.Equal(t, domain.StatusIndeterminate, report.Findings[0].Status)
	assert.Equal(t, domain.StatusSatisfied, report.Findings[1].Status)
	assert.Equal(t, domain.StatusNeedsReview, report.OverallStatus)
}

func TestValidate_RetrievalFailureIsolatedToRun(t *testing.T) {
	index := &mockIndex{queryErr: errors.New("index offline")}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true}}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	report, err := engine.Validate(context.Background(), loanRecord(
		domain.ExtractedField{Name: "Age", Value: "25", Confidence: 0.9},
	))

	require.NoError(t, err)
	for _, f := range report.Findings {
		assert.Equal(t, domain.StatusIndeterminate, f.Status)
	}
	assert.Equal(t, domain.StatusNeedsReview, report.OverallStatus)
}

func TestValidate_FindingsFollowRecordOrder(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.8)}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true}}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	var fields []domain.ExtractedField
	for i := 0; i < 20; i++ {
		fields = append(fields, domain.ExtractedField{
			Name:       fmt.Sprintf("field-%02d", i),
			Value:      "v",
			Confidence: 0.9,
		})
	}

	report, err := engine.Validate(context.Background(), loanRecord(fields...))

	require.NoError(t, err)
	require.Len(t, report.Findings, 21)
	for i := 0; i < 20; i++ {
		assert.Equal(t, fields[i].Name, report.Findings[i].FieldName,
			"finding order is record order, not completion order")
	}
	assert.Empty(t, report.Findings[20].FieldName, "document-level finding comes last")
}

func TestValidate_CancelledRunDegradesToIndeterminate(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.8)}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true}}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := engine.Validate(ctx, loanRecord(
		domain.ExtractedField{Name: "Age", Value: "25", Confidence: 0.9},
		domain.ExtractedField{Name: "Name", Value: "John", Confidence: 0.9},
	))

	require.NoError(t, err, "a cancelled run still yields a complete report")
	require.Len(t, report.Findings, 3)
	for _, f := range report.Findings {
		assert.Equal(t, domain.StatusIndeterminate, f.Status)
	}
	assert.Equal(t, domain.StatusNeedsReview, report.OverallStatus)
}

func TestValidate_WholeRecordStrategySharesEvidence(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.8)}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true}}
	retriever := NewRetriever(&mockEmbeddingService{embedding: []float32{1, 0}}, index, domain.RetrievalOptions{
		TopK:          5,
		MinSimilarity: 0.5,
		Strategy:      domain.QueryWholeRecord,
	})
	engine := NewValidationService(retriever, reconciler, ValidationOptions{})

	report, err := engine.Validate(context.Background(), loanRecord(
		domain.ExtractedField{Name: "Age", Value: "25", Confidence: 0.9},
		domain.ExtractedField{Name: "Name", Value: "John", Confidence: 0.9},
	))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompliant, report.OverallStatus)
	require.Len(t, report.Findings, 3)
	assert.Equal(t, report.Findings[0].Evidence, report.Findings[1].Evidence,
		"whole-record strategy shares one evidence set")
}

func TestValidate_EmptyRecordStillGetsDocumentFinding(t *testing.T) {
	index := &mockIndex{results: evidence(domain.CategoryGeneral, 0.8)}
	reconciler := &mockReconciler{verdict: driven.Verdict{Satisfied: true}}
	engine := newEngine(index, reconciler, domain.RetrievalOptions{MinSimilarity: 0.5})

	report, err := engine.Validate(context.Background(), loanRecord())

	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, domain.StatusSatisfied, report.Findings[0].Status)
	assert.Equal(t, domain.StatusCompliant, report.OverallStatus)
}
