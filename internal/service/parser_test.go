package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExplainStrict(t *testing.T) {
	raw := `{
		"overview": "Sums a slice.",
		"steps": ["initialise total", "iterate", "return total"],
		"bugs": ["Bug: overflows on large inputs"],
		"improvements": ["use int64"],
		"complexity": {"time": "O(n)", "space": "O(1)", "overall": "fine"}
	}`

	result, err := ParseExplain(raw)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, "Sums a slice.", result.Overview)
	assert.Len(t, result.Steps, 3)
	assert.Equal(t, "O(n)", result.Complexity["time"])
}

func TestParseExplainStripsFences(t *testing.T) {
	raw := "```json\n{\"overview\": \"ok\", \"steps\": [], \"bugs\": [], \"improvements\": [], \"complexity\": {}}\n```"

	result, err := ParseExplain(raw)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, "ok", result.Overview)
}

func TestParseExplainRecoversEmbeddedObject(t *testing.T) {
	raw := `Sure! Here is the analysis you asked for:
{"overview": "embedded", "steps": ["a"], "bugs": [], "improvements": [], "complexity": {}}
Hope that helps.`

	result, err := ParseExplain(raw)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, "embedded", result.Overview)
}

func TestParseExplainFallbackOnMalformed(t *testing.T) {
	raw := "This code sums a slice of ints. Not JSON at all."

	result, err := ParseExplain(raw)
	require.NoError(t, err, "malformed but non-empty output must not fail")
	assert.True(t, result.Degraded)
	assert.Equal(t, raw, result.Overview)
	assert.NotNil(t, result.Steps)
	assert.NotNil(t, result.Complexity)
}

func TestParseExplainEmptyOutputFails(t *testing.T) {
	_, err := ParseExplain("   \n\t  ")
	assert.ErrorIs(t, err, ErrEmptyModelOutput)

	_, err = ParseExplain("I can't help with that.")
	assert.ErrorIs(t, err, ErrEmptyModelOutput)
}

func TestParseTestsStrict(t *testing.T) {
	raw := `{
		"file_name": "sum_test.go",
		"test_code": "func TestSum(t *testing.T) {}",
		"cases_covered": ["normal input", "empty slice"],
		"run_instructions": "go test ./..."
	}`

	result, err := ParseTests(raw)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, "sum_test.go", result.FileName)
	assert.Equal(t, "go test ./...", result.RunInstructions)
}

func TestParseTestsFillsDefaults(t *testing.T) {
	raw := `{"test_code": "assert(true)", "cases_covered": []}`

	result, err := ParseTests(raw)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, "generated_test.txt", result.FileName)
	require.Len(t, result.CasesCovered, 1)
}

func TestParseTestsFallbackOnMissingCode(t *testing.T) {
	result, err := ParseTests(`{"file_name": "x.py"}`)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.NotEmpty(t, result.TestCode)
}

func TestParseRefactorStrict(t *testing.T) {
	raw := `{
		"refactored_code": "def f():\n    return 1",
		"improvements": ["Readability: names"],
		"change_explanation": ["renamed x"]
	}`

	result, err := ParseRefactor(raw)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Contains(t, result.RefactoredCode, "def f()")
}

func TestParseRefactorFallback(t *testing.T) {
	raw := "here is better code: def f(): return 1"

	result, err := ParseRefactor(raw)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, raw, result.RefactoredCode)
}

func TestParseRefactorEmptyFails(t *testing.T) {
	_, err := ParseRefactor("")
	assert.ErrorIs(t, err, ErrEmptyModelOutput)
}
