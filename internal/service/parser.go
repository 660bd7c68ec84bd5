package service

import (
	"encoding/json"
	"errors"
	"strings"

	"codexplain/internal/models"
)

// ErrEmptyModelOutput means the model produced nothing usable: empty text or
// a bare refusal. There is no fallback for it; the request fails.
var ErrEmptyModelOutput = errors.New("model returned no usable output")

// extractJSON strips code fences and slices the outermost JSON object out of
// raw model text. Models wrap JSON in markdown fences or pre/postambles often
// enough that going straight to json.Unmarshal loses good answers.
func extractJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.ReplaceAll(clean, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	return clean
}

// refusalMarkers identify bare refusals that carry no extractable content.
var refusalMarkers = []string{
	"i can't help with that",
	"i cannot help with that",
	"i can't assist with that",
	"i cannot assist with that",
}

func isRefusal(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, m := range refusalMarkers {
		if strings.HasPrefix(lower, m) {
			return true
		}
	}
	return false
}

// asStrings filters a decoded JSON array down to its string elements.
func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// asStringMap filters a decoded JSON object down to its string values.
func asStringMap(v any) map[string]string {
	fields, ok := v.(map[string]any)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(fields))
	for k, val := range fields {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// decodeObject parses raw model text into a generic JSON object, or reports
// that the strict path failed.
func decodeObject(raw string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// ParseExplain validates raw model text against the explain schema. On parse
// failure the whole text becomes the overview and the result is flagged
// degraded; the caller always gets a schema-conformant payload for non-empty
// output.
func ParseExplain(raw string) (models.ExplainResult, error) {
	if strings.TrimSpace(raw) == "" || isRefusal(raw) {
		return models.ExplainResult{}, ErrEmptyModelOutput
	}

	obj, ok := decodeObject(raw)
	if !ok || asString(obj["overview"]) == "" {
		return models.ExplainResult{
			Overview:     strings.TrimSpace(raw),
			Steps:        []string{},
			Bugs:         []string{},
			Improvements: []string{},
			Complexity:   map[string]string{},
			Degraded:     true,
		}, nil
	}

	return models.ExplainResult{
		Overview:     asString(obj["overview"]),
		Steps:        asStrings(obj["steps"]),
		Bugs:         asStrings(obj["bugs"]),
		Improvements: asStrings(obj["improvements"]),
		Complexity:   asStringMap(obj["complexity"]),
	}, nil
}

// ParseTests validates raw model text against the generate-tests schema,
// falling back to treating the whole text as the test code.
func ParseTests(raw string) (models.TestGenResult, error) {
	if strings.TrimSpace(raw) == "" || isRefusal(raw) {
		return models.TestGenResult{}, ErrEmptyModelOutput
	}

	obj, ok := decodeObject(raw)
	if !ok || asString(obj["test_code"]) == "" {
		return models.TestGenResult{
			FileName:     "generated_test.txt",
			TestCode:     strings.TrimSpace(raw),
			CasesCovered: []string{},
			Degraded:     true,
		}, nil
	}

	result := models.TestGenResult{
		FileName:        asString(obj["file_name"]),
		TestCode:        asString(obj["test_code"]),
		CasesCovered:    asStrings(obj["cases_covered"]),
		RunInstructions: asString(obj["run_instructions"]),
	}
	if result.FileName == "" {
		result.FileName = "generated_test.txt"
	}
	if len(result.CasesCovered) == 0 {
		result.CasesCovered = []string{"Test cases not explicitly listed by the model"}
	}
	return result, nil
}

// ParseRefactor validates raw model text against the refactor schema,
// falling back to treating the whole text as the refactored code.
func ParseRefactor(raw string) (models.RefactorResult, error) {
	if strings.TrimSpace(raw) == "" || isRefusal(raw) {
		return models.RefactorResult{}, ErrEmptyModelOutput
	}

	obj, ok := decodeObject(raw)
	if !ok || asString(obj["refactored_code"]) == "" {
		return models.RefactorResult{
			RefactoredCode:    strings.TrimSpace(raw),
			Improvements:      []string{},
			ChangeExplanation: []string{},
			Degraded:          true,
		}, nil
	}

	return models.RefactorResult{
		RefactoredCode:    asString(obj["refactored_code"]),
		Improvements:      asStrings(obj["improvements"]),
		ChangeExplanation: asStrings(obj["change_explanation"]),
	}, nil
}
