package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codexplain/internal/models"
)

func TestBuildPromptDeterministic(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Source: "docs/slices.md", Text: "Slices grow amortised.", Score: 0.91},
		{Source: "docs/maps.md", Text: "Maps are unordered.", Score: 0.83},
	}

	a := BuildPrompt(models.ModeExplain, "x := []int{1}", chunks)
	b := BuildPrompt(models.ModeExplain, "x := []int{1}", chunks)
	assert.Equal(t, a, b, "identical inputs must yield byte-identical prompts")
}

func TestBuildPromptRendersSourcesBeforeCode(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Source: "docs/slices.md", Text: "Slices grow amortised."},
	}

	prompt := BuildPrompt(models.ModeExplain, "x := 1", chunks)
	require.Contains(t, prompt, "[SOURCE: docs/slices.md]")
	assert.Less(t,
		strings.Index(prompt, "[SOURCE: docs/slices.md]"),
		strings.Index(prompt, "CODE:"),
		"context block must precede the user's code")
}

func TestBuildPromptEmptyContextRendersNothing(t *testing.T) {
	prompt := BuildPrompt(models.ModeExplain, "x := 1", nil)
	assert.NotContains(t, prompt, "CONTEXT FROM KNOWLEDGE BASE")
	assert.NotContains(t, prompt, "[SOURCE:")
}

func TestBuildPromptPerModeInstructions(t *testing.T) {
	explain := BuildPrompt(models.ModeExplain, "x", nil)
	tests := BuildPrompt(models.ModeTests, "x", nil)
	refactor := BuildPrompt(models.ModeRefactor, "x", nil)

	assert.Contains(t, explain, `"overview"`)
	assert.Contains(t, tests, `"test_code"`)
	assert.Contains(t, refactor, `"refactored_code"`)
	assert.NotEqual(t, explain, tests)
	assert.NotEqual(t, tests, refactor)
}

func TestBuildPromptContainsUserCode(t *testing.T) {
	code := "def f():\n    return 42"
	prompt := BuildPrompt(models.ModeRefactor, code, nil)
	assert.Contains(t, prompt, code)
}
