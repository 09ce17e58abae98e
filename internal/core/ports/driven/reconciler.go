package driven

import "context"

// Verdict is the outcome of reconciling a field value against policy text.
type Verdict struct {
	// Satisfied is true when the value complies with the policy constraint.
	Satisfied bool

	// Rationale explains the verdict. It is carried into the finding
	// explanation verbatim.
	Rationale string
}

// Reconciler judges whether an extracted value satisfies the constraints
// stated in a policy chunk. It is an external collaborator (language model)
// treated as a black box.
//
// Errors wrap domain.ErrLLMCall, or one of its specialisations
// (domain.ErrRateLimited, domain.ErrMalformedResponse, domain.ErrLLMTimeout).
type Reconciler interface {
	// Reconcile evaluates fieldValue against the given policy text.
	Reconcile(ctx context.Context, fieldName, fieldValue, policyText string) (Verdict, error)

	// Close releases resources.
	Close() error
}
