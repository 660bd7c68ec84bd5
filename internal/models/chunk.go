package models

// RetrievedChunk is one nearest-neighbor match from the docs vector index.
// Sequences of chunks keep the store's descending-score order; ties are left
// in the store's native order, never re-sorted.
type RetrievedChunk struct {
	SourceID string  `bson:"_id" json:"source_id"`
	Source   string  `bson:"source" json:"source"` // origin path of the ingested document
	Text     string  `bson:"text" json:"text"`
	Score    float64 `bson:"score" json:"score"`
}

// Citation is the response-facing reference to a retrieved source.
type Citation struct {
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// snippetLen bounds the citation excerpt taken from a chunk.
const snippetLen = 300

// Cite converts a chunk into its citation form.
func (c RetrievedChunk) Cite() Citation {
	text := c.Text
	if len(text) > snippetLen {
		text = text[:snippetLen]
	}
	return Citation{Source: c.Source, Snippet: text}
}
