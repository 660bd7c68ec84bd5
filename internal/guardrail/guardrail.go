// Package guardrail classifies raw user input before it reaches retrieval or
// the model. Verdicts are advisory to the orchestrator: a block short-circuits
// the request but is reported to the client as a structured response, not a
// transport error.
package guardrail

import (
	"fmt"
	"strings"
)

// Verdict is the outcome of a guardrail check.
type Verdict struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

// BlockedError carries a block verdict across the service boundary so the
// handler can render it as a safe 200 response.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "input blocked by guardrail: " + e.Reason
}

// Validator evaluates input against a rule set.
type Validator struct {
	rules RuleSet
}

// NewValidator returns a validator over the given rule set.
func NewValidator(rules RuleSet) *Validator {
	return &Validator{rules: rules}
}

// Version reports the rule set version in effect.
func (v *Validator) Version() string { return v.rules.Version }

// Check scans text and returns a block verdict on the first matching rule.
// Empty input is allowed; emptiness is a validation concern, not a safety one.
func (v *Validator) Check(text string) Verdict {
	if text == "" {
		return Verdict{}
	}

	for _, r := range v.rules.Rules {
		if r.Pattern.MatchString(text) {
			return Verdict{Blocked: true, Reason: r.Reason}
		}
	}

	for _, tok := range v.rules.SpecialTokens {
		if strings.Contains(text, tok) {
			return Verdict{Blocked: true, Reason: fmt.Sprintf("input contains special model token %s", tok)}
		}
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range v.rules.InstructionKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits >= v.rules.KeywordThreshold {
		return Verdict{Blocked: true, Reason: "input contains multiple instruction-like phrases suggesting prompt injection"}
	}

	return Verdict{}
}
