package service

import (
	"context"
	"sync/atomic"

	"codexplain/internal/models"
)

// Test doubles used across the service and handler tests.

type dummyLLM struct {
	output string
	err    error
	calls  atomic.Int64
}

// NewDummyLLM returns an LLM that always answers output (or fails with err)
// and counts invocations.
func NewDummyLLM(output string, err error) *dummyLLM {
	return &dummyLLM{output: output, err: err}
}

func (d *dummyLLM) Complete(ctx context.Context, prompt string) (string, error) {
	d.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.err != nil {
		return "", d.err
	}
	return d.output, nil
}

// Calls reports how many times the model was invoked.
func (d *dummyLLM) Calls() int64 { return d.calls.Load() }

type dummyRetriever struct {
	chunks []models.RetrievedChunk
	err    error
	calls  atomic.Int64
}

// NewDummyRetriever returns a retriever serving canned chunks or a fixed error.
func NewDummyRetriever(chunks []models.RetrievedChunk, err error) *dummyRetriever {
	return &dummyRetriever{chunks: chunks, err: err}
}

func (d *dummyRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error) {
	d.calls.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	if k < len(d.chunks) {
		return d.chunks[:k], nil
	}
	return d.chunks, nil
}

// Calls reports how many times retrieval was invoked.
func (d *dummyRetriever) Calls() int64 { return d.calls.Load() }
