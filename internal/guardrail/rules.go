package guardrail

import "regexp"

// Rule pairs an injection pattern with the reason reported when it fires.
// Patterns are matched case-insensitively against the raw input.
type Rule struct {
	Pattern *regexp.Regexp
	Reason  string
}

// RuleSet is a versioned collection of guardrail rules. Version changes
// whenever the rule table changes, which is why blocked verdicts are never
// cached: a verdict is only valid for the rule set that produced it.
type RuleSet struct {
	Version string
	Rules   []Rule

	// SpecialTokens are model chat-template markers that never belong in
	// legitimate source code. Matched verbatim, case-sensitive.
	SpecialTokens []string

	// InstructionKeywords feed the density heuristic: input containing
	// KeywordThreshold or more distinct entries is treated as an
	// instruction payload rather than code.
	InstructionKeywords []string
	KeywordThreshold    int
}

func rule(expr, reason string) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)` + expr), Reason: reason}
}

// DefaultRuleSet returns the built-in injection rule table.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Version: "2024-06-01",
		Rules: []Rule{
			// Direct instruction override
			rule(`ignore (all )?previous (instructions|prompts|rules)`, "attempts to override prior instructions"),
			rule(`disregard (all )?previous (instructions|prompts|rules)`, "attempts to override prior instructions"),
			rule(`forget (all )?previous (instructions|prompts|rules)`, "attempts to override prior instructions"),
			rule(`ignore (all )?(the )?above`, "attempts to override prior instructions"),
			rule(`disregard (all )?(the )?above`, "attempts to override prior instructions"),

			// Role manipulation
			rule(`you are now`, "attempts to reassign the assistant role"),
			rule(`pretend (you are|to be)`, "attempts to reassign the assistant role"),
			rule(`roleplay as`, "attempts to reassign the assistant role"),

			// System prompt extraction
			rule(`what (are|were) your (initial )?instructions`, "attempts to extract the system prompt"),
			rule(`(show|reveal|print)( me)? your (system )?prompt`, "attempts to extract the system prompt"),
			rule(`what (are|is) your (system )?prompt`, "attempts to extract the system prompt"),

			// Output manipulation
			rule(`(respond|reply) (only|just) with`, "attempts to constrain model output"),
			rule(`(say|print|return|output) (only|just)`, "attempts to constrain model output"),

			// Jailbreak markers
			rule(`dan mode`, "known jailbreak marker"),
			rule(`developer mode`, "known jailbreak marker"),
			rule(`jailbreak`, "known jailbreak marker"),

			// Injected chat structure
			rule(`new instructions?:`, "injects a new instruction block"),
			rule(`<\|im_start\|>`, "injects a chat template marker"),
			rule(`<\|im_end\|>`, "injects a chat template marker"),
		},
		SpecialTokens: []string{
			"<|endoftext|>", "[INST]", "[/INST]", "<|system|>", "<|user|>", "<|assistant|>",
		},
		InstructionKeywords: []string{
			"ignore", "disregard", "forget", "pretend", "act as",
			"you are", "your role", "new instructions", "system prompt",
		},
		KeywordThreshold: 3,
	}
}
