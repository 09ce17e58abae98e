package domain

import "time"

// FindingStatus is the per-field outcome of a validation check.
type FindingStatus string

const (
	// StatusSatisfied means the value complies with the retrieved policy.
	StatusSatisfied FindingStatus = "SATISFIED"

	// StatusMissing means the field is empty but policy marks it mandatory.
	StatusMissing FindingStatus = "MISSING"

	// StatusViolation means the value contradicts the retrieved policy.
	StatusViolation FindingStatus = "VIOLATION"

	// StatusIndeterminate means the check could not be resolved: no policy
	// matched, a collaborator failed, or the run was cancelled.
	StatusIndeterminate FindingStatus = "INDETERMINATE"
)

// ReportStatus is the aggregated outcome of a validation run.
type ReportStatus string

const (
	// StatusCompliant means every finding is satisfied.
	StatusCompliant ReportStatus = "COMPLIANT"

	// StatusNonCompliant means at least one finding is a violation.
	StatusNonCompliant ReportStatus = "NON_COMPLIANT"

	// StatusNeedsReview means no violations, but at least one finding is
	// missing or indeterminate.
	StatusNeedsReview ReportStatus = "NEEDS_REVIEW"
)

// ValidationFinding is the outcome of checking one field (or, with an empty
// FieldName, the whole document) against the policy corpus.
type ValidationFinding struct {
	// FieldName names the checked field. Empty for the document-level
	// finding.
	FieldName string `json:"field_name,omitempty"`

	// Status is the finding outcome.
	Status FindingStatus `json:"status"`

	// Evidence lists the retrieved policy chunks the finding rests on.
	// Never nil; an unresolvable check carries an empty slice.
	Evidence []RetrievalResult `json:"evidence"`

	// Explanation is the human-readable rationale.
	Explanation string `json:"explanation,omitempty"`
}

// ValidationReport is the complete outcome of one validation run.
type ValidationReport struct {
	// ID uniquely identifies the report.
	ID string `json:"id"`

	// OverallStatus is the aggregate of all findings.
	OverallStatus ReportStatus `json:"overall_status"`

	// Findings holds one finding per record field, in record order, plus
	// the document-level finding last.
	Findings []ValidationFinding `json:"findings"`

	// GeneratedAt is the UTC completion time of the run.
	GeneratedAt time.Time `json:"generated_at"`

	// Record is the validated record.
	Record ExtractedFormRecord `json:"record"`
}

// AggregateStatus folds findings into the overall report status. Any
// violation makes the report non-compliant regardless of the other
// findings; otherwise any missing or indeterminate finding demotes it to
// needs-review.
func AggregateStatus(findings []ValidationFinding) ReportStatus {
	status := StatusCompliant
	for _, f := range findings {
		switch f.Status {
		case StatusViolation:
			return StatusNonCompliant
		case StatusMissing, StatusIndeterminate:
			status = StatusNeedsReview
		case StatusSatisfied:
		}
	}
	return status
}

// CountByStatus tallies findings per status.
func CountByStatus(findings []ValidationFinding) map[FindingStatus]int {
	counts := make(map[FindingStatus]int)
	for _, f := range findings {
		counts[f.Status]++
	}
	return counts
}
