package models

// Mode selects which pipeline a submitted snippet runs through.
type Mode string

const (
	ModeExplain  Mode = "explain"
	ModeTests    Mode = "generate_tests"
	ModeRefactor Mode = "refactor"
)

// AssistRequest is the payload for POST /explain, /generate-tests and
// /refactor. Immutable once parsed; the handler trims Code before the
// request enters the pipeline so the cache fingerprint ignores leading
// and trailing whitespace.
type AssistRequest struct {
	Code       string `json:"code"`
	RagEnabled bool   `json:"rag_enabled"`
	K          *int   `json:"k,omitempty"` // nil means "use the default"
}

// RetrievalRequest is the payload for GET /debug-retrieval (query parameters).
type RetrievalRequest struct {
	Query string `json:"query" query:"query"`
	K     int    `json:"k"     query:"k"`
}
