package service

import (
	"fmt"
	"strings"

	"codexplain/internal/models"
)

// Per-mode instruction blocks. The JSON-only contract is stated up front and
// restated at the end of every prompt.
const (
	explainInstructions = `You are an expert software engineer and code reviewer.
Analyze the following code and provide a detailed explanation.

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON object
2. No markdown code blocks (no ` + "```json or ```" + `)
3. No additional text before or after the JSON

REQUIRED JSON STRUCTURE:
{
  "overview": "A 2-3 sentence summary of what this code does",
  "steps": ["First, the code does X...", "Then it performs Y..."],
  "bugs": ["Bug: description of the issue and why it could cause problems"],
  "improvements": ["A concrete, actionable improvement"],
  "complexity": {"time": "O(...)", "space": "O(...)", "overall": "..."}
}`

	testsInstructions = `You are a senior QA engineer specializing in test automation.
Generate comprehensive unit tests for the following code.

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON object
2. No markdown code blocks (no ` + "```json or ```" + `)
3. No additional text before or after the JSON
4. Use \n for newlines and escape quotes properly inside JSON strings
5. Include at least 3-5 realistic test cases

REQUIRED JSON STRUCTURE:
{
  "file_name": "test_example.py",
  "test_code": "import unittest\n...",
  "cases_covered": ["Tests normal input", "Tests edge case with empty input"],
  "run_instructions": "Run with: python -m unittest test_example.py"
}`

	refactorInstructions = `You are a senior software engineer specializing in refactoring and optimization.
Refactor the following code to improve its quality, readability, and performance
while preserving behavior.

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON object
2. No markdown code blocks (no ` + "```json or ```" + `)
3. No additional text before or after the JSON
4. Use \n for newlines and escape quotes properly inside JSON strings

REQUIRED JSON STRUCTURE:
{
  "refactored_code": "// improved version\n...",
  "improvements": ["Readability: ...", "Performance: ..."],
  "change_explanation": ["Renamed variable x to userCount", "Extracted helper validateInput"]
}`

	promptClose = `REMEMBER: Output ONLY the JSON object. Start with { and end with }. No other text.`
)

// BuildPrompt assembles the model prompt for a mode: fixed instructions, the
// retrieved context block (omitted entirely when chunks is empty), and the
// user's code. The output is byte-identical for identical inputs — the cache
// fingerprint is derived upstream and relies on this.
func BuildPrompt(mode models.Mode, code string, chunks []models.RetrievedChunk) string {
	var sb strings.Builder

	switch mode {
	case models.ModeTests:
		sb.WriteString(testsInstructions)
	case models.ModeRefactor:
		sb.WriteString(refactorInstructions)
	default:
		sb.WriteString(explainInstructions)
	}
	sb.WriteString("\n\n")

	if len(chunks) > 0 {
		sb.WriteString("CONTEXT FROM KNOWLEDGE BASE:\n")
		for _, c := range chunks {
			fmt.Fprintf(&sb, "[SOURCE: %s]\n%s\n\n", c.Source, c.Text)
		}
	}

	sb.WriteString("CODE:\n```\n")
	sb.WriteString(code)
	sb.WriteString("\n```\n\n")
	sb.WriteString(promptClose)

	return sb.String()
}
