package models

// ExplainResult is the schema-conformant payload for explain mode.
// Degraded is true when the payload was produced by fallback extraction or
// when retrieval fell back, rather than by the primary path.
type ExplainResult struct {
	Overview     string            `json:"overview"`
	Steps        []string          `json:"steps"`
	Bugs         []string          `json:"bugs"`
	Improvements []string          `json:"improvements"`
	Complexity   map[string]string `json:"complexity"`
	Degraded     bool              `json:"degraded"`
}

// TestGenResult is the schema-conformant payload for generate-tests mode.
type TestGenResult struct {
	FileName        string   `json:"file_name"`
	TestCode        string   `json:"test_code"`
	CasesCovered    []string `json:"cases_covered"`
	RunInstructions string   `json:"run_instructions"`
	Degraded        bool     `json:"degraded"`
}

// RefactorResult is the schema-conformant payload for refactor mode.
type RefactorResult struct {
	RefactoredCode    string   `json:"refactored_code"`
	Improvements      []string `json:"improvements"`
	ChangeExplanation []string `json:"change_explanation"`
	Degraded          bool     `json:"degraded"`
}

// ExplainResponse is the full envelope returned by POST /explain.
type ExplainResponse struct {
	ExplainResult
	Citations []Citation `json:"citations"`
	Cached    bool       `json:"cached"`
}

// TestGenResponse is the full envelope returned by POST /generate-tests.
type TestGenResponse struct {
	TestGenResult
	Citations []Citation `json:"citations"`
	Cached    bool       `json:"cached"`
}

// RefactorResponse is the full envelope returned by POST /refactor.
type RefactorResponse struct {
	RefactorResult
	Citations []Citation `json:"citations"`
	Cached    bool       `json:"cached"`
}
