package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
)

// Ensure Reconciler implements the interface.
var _ driven.Reconciler = (*Reconciler)(nil)

const reconcileSystemPrompt = "You are a bank form validation expert. " +
	"Always return valid JSON."

const reconcilePromptTemplate = `Judge whether a form field value complies with the bank policy below.

FIELD NAME: %s
FIELD VALUE: %s

RELEVANT BANK POLICY:
%s

Return your verdict in the following JSON format:
{
  "satisfied": true or false,
  "rationale": "one or two sentences citing the policy rule"
}

Be specific. If the policy states a limit or a required format, check the
value against it exactly.`

// reconcileResult is the JSON shape the model is asked to return.
type reconcileResult struct {
	Satisfied bool   `json:"satisfied"`
	Rationale string `json:"rationale"`
}

// Reconciler judges field values against policy text using a chat model.
type Reconciler struct {
	client *client
}

// NewReconciler creates a new OpenAI-backed reconciler.
func NewReconciler(cfg Config) (*Reconciler, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Reconciler{client: c}, nil
}

// Reconcile evaluates fieldValue against the given policy text.
func (r *Reconciler) Reconcile(ctx context.Context, fieldName, fieldValue, policyText string) (driven.Verdict, error) {
	prompt := fmt.Sprintf(reconcilePromptTemplate, fieldName, fieldValue, policyText)

	reply, err := r.client.complete(ctx, reconcileSystemPrompt, prompt, 500)
	if err != nil {
		return driven.Verdict{}, fmt.Errorf("reconcile %q: %w", fieldName, err)
	}

	raw, err := extractJSON(reply)
	if err != nil {
		return driven.Verdict{}, fmt.Errorf("openai: %w", err)
	}

	var result reconcileResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return driven.Verdict{}, fmt.Errorf("openai: %w: %w", domain.ErrMalformedResponse, err)
	}

	return driven.Verdict{
		Satisfied: result.Satisfied,
		Rationale: result.Rationale,
	}, nil
}

// ModelName returns the chat model in use.
func (r *Reconciler) ModelName() string {
	return r.client.model
}

// Close releases resources.
func (r *Reconciler) Close() error {
	return nil
}
