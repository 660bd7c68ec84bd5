package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"codexplain/internal/cache"
	"codexplain/internal/guardrail"
	"codexplain/internal/models"
)

const (
	// maxCodeLen bounds submitted snippets; anything larger is rejected
	// before retrieval or the model see it.
	maxCodeLen = 50000

	defaultK = 4
	maxK     = 10
)

// Request-validation errors, mapped to 400 at the handler boundary.
var (
	ErrEmptyCode   = errors.New("code cannot be empty or whitespace only")
	ErrCodeTooLong = errors.New("code is too long; submit code under 50,000 characters")
)

// AssistService sequences a request through guardrail check, optional
// retrieval, prompt assembly, cache lookup, model invocation, and parsing.
// It holds no state of its own beyond the injected caches.
type AssistService struct {
	guard     *guardrail.Validator
	retriever Retriever
	llm       LLM

	explainCache  *cache.Cache[models.ExplainResponse]
	testsCache    *cache.Cache[models.TestGenResponse]
	refactorCache *cache.Cache[models.RefactorResponse]

	llmTimeout time.Duration
}

// NewAssistService wires the pipeline. The caches are owned by the caller
// (built once at boot) and shared with the cache admin endpoints.
func NewAssistService(
	guard *guardrail.Validator,
	retriever Retriever,
	llm LLM,
	explainCache *cache.Cache[models.ExplainResponse],
	testsCache *cache.Cache[models.TestGenResponse],
	refactorCache *cache.Cache[models.RefactorResponse],
	llmTimeout time.Duration,
) *AssistService {
	return &AssistService{
		guard:         guard,
		retriever:     retriever,
		llm:           llm,
		explainCache:  explainCache,
		testsCache:    testsCache,
		refactorCache: refactorCache,
		llmTimeout:    llmTimeout,
	}
}

// normalizeK applies the default and clamps k into [0, maxK]. k = 0 is a
// valid request for zero context chunks.
func normalizeK(k *int) int {
	if k == nil {
		return defaultK
	}
	if *k < 0 {
		return 0
	}
	if *k > maxK {
		return maxK
	}
	return *k
}

// validate trims and bounds the submitted code, then runs the guardrail.
// A block is returned as *guardrail.BlockedError so the handler can render
// the structured safe response.
func (s *AssistService) validate(req models.AssistRequest) (string, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return "", ErrEmptyCode
	}
	if len(code) > maxCodeLen {
		return "", ErrCodeTooLong
	}
	if verdict := s.guard.Check(code); verdict.Blocked {
		log.Printf("guardrail blocked request (rules %s): %s", s.guard.Version(), verdict.Reason)
		return "", &guardrail.BlockedError{Reason: verdict.Reason}
	}
	return code, nil
}

// retrieveContext fetches reference chunks when RAG is on. Retrieval failure
// is degradation, not an error: the pipeline continues without context.
func (s *AssistService) retrieveContext(ctx context.Context, code string, k int, ragEnabled bool) (chunks []models.RetrievedChunk, degraded bool) {
	if !ragEnabled || k == 0 {
		return nil, false
	}
	chunks, err := s.retriever.Retrieve(ctx, code, k)
	if err != nil {
		log.Printf("warning: retrieval failed, continuing without context: %v", err)
		return nil, true
	}
	return chunks, false
}

// complete invokes the model under the configured timeout.
func (s *AssistService) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	log.Printf("model call completed in %dms (%d chars)", time.Since(start).Milliseconds(), len(raw))
	return raw, nil
}

func citationsOf(chunks []models.RetrievedChunk) []models.Citation {
	citations := make([]models.Citation, 0, len(chunks))
	for _, c := range chunks {
		citations = append(citations, c.Cite())
	}
	return citations
}

// Explain runs the explain pipeline for req.
func (s *AssistService) Explain(ctx context.Context, req models.AssistRequest) (*models.ExplainResponse, error) {
	code, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	k := normalizeK(req.K)

	chunks, retrievalDegraded := s.retrieveContext(ctx, code, k, req.RagEnabled)

	key := cache.Fingerprint(models.ModeExplain, code, req.RagEnabled, k)
	if hit, ok := s.explainCache.Get(key); ok {
		hit.Cached = true
		return &hit, nil
	}

	raw, err := s.complete(ctx, BuildPrompt(models.ModeExplain, code, chunks))
	if err != nil {
		return nil, err
	}
	result, err := ParseExplain(raw)
	if err != nil {
		return nil, err
	}
	result.Degraded = result.Degraded || retrievalDegraded

	resp := models.ExplainResponse{
		ExplainResult: result,
		Citations:     citationsOf(chunks),
	}
	// A retrieval-degraded answer reflects a transient outage; do not pin
	// it for a full TTL. Cancelled attempts are never written either.
	if !retrievalDegraded && ctx.Err() == nil {
		s.explainCache.Put(key, resp)
	}
	return &resp, nil
}

// GenerateTests runs the generate-tests pipeline for req.
func (s *AssistService) GenerateTests(ctx context.Context, req models.AssistRequest) (*models.TestGenResponse, error) {
	code, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	k := normalizeK(req.K)

	chunks, retrievalDegraded := s.retrieveContext(ctx, code, k, req.RagEnabled)

	key := cache.Fingerprint(models.ModeTests, code, req.RagEnabled, k)
	if hit, ok := s.testsCache.Get(key); ok {
		hit.Cached = true
		return &hit, nil
	}

	raw, err := s.complete(ctx, BuildPrompt(models.ModeTests, code, chunks))
	if err != nil {
		return nil, err
	}
	result, err := ParseTests(raw)
	if err != nil {
		return nil, err
	}
	result.Degraded = result.Degraded || retrievalDegraded

	resp := models.TestGenResponse{
		TestGenResult: result,
		Citations:     citationsOf(chunks),
	}
	if !retrievalDegraded && ctx.Err() == nil {
		s.testsCache.Put(key, resp)
	}
	return &resp, nil
}

// Refactor runs the refactor pipeline for req.
func (s *AssistService) Refactor(ctx context.Context, req models.AssistRequest) (*models.RefactorResponse, error) {
	code, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	k := normalizeK(req.K)

	chunks, retrievalDegraded := s.retrieveContext(ctx, code, k, req.RagEnabled)

	key := cache.Fingerprint(models.ModeRefactor, code, req.RagEnabled, k)
	if hit, ok := s.refactorCache.Get(key); ok {
		hit.Cached = true
		return &hit, nil
	}

	raw, err := s.complete(ctx, BuildPrompt(models.ModeRefactor, code, chunks))
	if err != nil {
		return nil, err
	}
	result, err := ParseRefactor(raw)
	if err != nil {
		return nil, err
	}
	result.Degraded = result.Degraded || retrievalDegraded

	resp := models.RefactorResponse{
		RefactorResult: result,
		Citations:      citationsOf(chunks),
	}
	if !retrievalDegraded && ctx.Err() == nil {
		s.refactorCache.Put(key, resp)
	}
	return &resp, nil
}

// CacheStats snapshots every mode cache, keyed by mode.
func (s *AssistService) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"explain":  s.explainCache.Stats(),
		"tests":    s.testsCache.Stats(),
		"refactor": s.refactorCache.Stats(),
	}
}

// ClearCaches drops every cached response; lifetime counters survive.
func (s *AssistService) ClearCaches() {
	s.explainCache.Clear()
	s.testsCache.Clear()
	s.refactorCache.Clear()
}

// CacheSizes reports current entry counts per mode, for /health.
func (s *AssistService) CacheSizes() map[string]int {
	return map[string]int{
		"explain":  s.explainCache.Len(),
		"tests":    s.testsCache.Len(),
		"refactor": s.refactorCache.Len(),
	}
}
