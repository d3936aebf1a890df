// Package policy evaluates the admission policy for user messages.
package policy

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/open-policy-agent/opa/rego"
)

// Actions returned by the policy.
const (
	ActionAllow = "allow"
	ActionBlock = "block"
)

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Action string
	Reason string
}

// Allowed reports whether the message may be posted.
func (d Decision) Allowed() bool {
	return d.Action != ActionBlock
}

// Engine is the OPA policy engine.
type Engine struct {
	query     rego.PreparedEvalQuery
	maxLength int
}

// NewEngine creates a new policy engine with the given policy content.
// maxLength of zero disables the length rule.
func NewEngine(ctx context.Context, policyContent string, maxLength int) (*Engine, error) {
	r := rego.New(
		rego.Query("data.message_policy.decision"),
		rego.Module("message_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query, maxLength: maxLength}, nil
}

// Evaluate checks a message against the policy.
func (e *Engine) Evaluate(ctx context.Context, content string) (Decision, error) {
	trimmed := strings.TrimSpace(content)
	input := map[string]interface{}{
		"content":    trimmed,
		"length":     utf8.RuneCountInString(trimmed),
		"max_length": e.maxLength,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Action: ActionAllow, Reason: "default"}, nil
	}

	// Either a bare action string or {"action": ..., "reason": ...}.
	switch val := results[0].Expressions[0].Value.(type) {
	case string:
		return Decision{Action: val}, nil
	case map[string]interface{}:
		d := Decision{Action: ActionAllow}
		if a, ok := val["action"].(string); ok {
			d.Action = a
		}
		if r, ok := val["reason"].(string); ok {
			d.Reason = r
		}
		return d, nil
	default:
		return Decision{}, fmt.Errorf("unexpected policy result type %T", val)
	}
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package message_policy

default decision = {"action": "allow", "reason": ""}

decision = {"action": "block", "reason": "message is empty"} {
	input.length == 0
}

decision = {"action": "block", "reason": "message is too long"} {
	input.max_length > 0
	input.length > input.max_length
}
`
