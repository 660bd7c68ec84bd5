package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// VertexLLM implements the LLM interface using Google's Vertex AI
type VertexLLM struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexLLM creates a new Vertex AI LLM client for the given model.
// Temperature is kept low: the callers expect strict JSON, not prose.
func NewVertexLLM(ctx context.Context, projectID, location, modelName string) (*VertexLLM, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.SetTopP(0.8)
	model.SetTopK(40)

	return &VertexLLM{
		client: client,
		model:  model,
	}, nil
}

// Complete generates a response for prompt. Provider failures are classified
// into transient and permanent ProviderErrors so the retry layer can decide.
func (l *VertexLLM) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := l.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyProviderError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Code: "EMPTY_CANDIDATES", Message: "no response generated"}
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", &ProviderError{Code: "BAD_PART", Message: "unexpected response part type"}
	}
	return string(text), nil
}

// classifyProviderError maps transport failures onto the ProviderError
// taxonomy. Timeouts and gRPC availability-class codes are transient;
// everything else (auth, bad request, quota denial) is permanent.
func classifyProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Code: "TIMEOUT", Message: "model call timed out", Transient: true, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.Aborted, codes.DeadlineExceeded, codes.Internal:
			return &ProviderError{Code: st.Code().String(), Message: st.Message(), Transient: true, Err: err}
		default:
			return &ProviderError{Code: st.Code().String(), Message: st.Message(), Err: err}
		}
	}

	return &ProviderError{Code: "UNKNOWN", Message: err.Error(), Err: err}
}

// Close closes the Vertex AI client
func (l *VertexLLM) Close() error {
	return l.client.Close()
}
