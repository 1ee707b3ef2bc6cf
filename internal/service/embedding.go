// Package service provides the flowgraph pipeline and its supporting
// model-backed services.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const embeddingTimeout = 30 * time.Second

// EmbeddingService generates vector embeddings via the Ollama API.
type EmbeddingService struct {
	ollamaURL string
	model     string
	client    *http.Client
	cb        breaker
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// localhostTransport restricts outbound connections to loopback addresses.
// The model server holds no credentials, but keeping it local-only means a
// misconfigured URL cannot leak tool descriptions off the host.
func localhostTransport() *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, fmt.Errorf("invalid address: %w", err)
			}

			ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, fmt.Errorf("resolving model host: %w", err)
			}

			for _, ip := range ips {
				if !ip.IP.IsLoopback() {
					return nil, fmt.Errorf("model service connections restricted to localhost")
				}
			}

			return (&net.Dialer{}).DialContext(ctx, network, addr)
		},
	}
}

// NewEmbeddingService creates an EmbeddingService for the given Ollama
// endpoint and model.
func NewEmbeddingService(ollamaURL, model string) *EmbeddingService {
	return &EmbeddingService{
		ollamaURL: ollamaURL,
		model:     model,
		client:    &http.Client{Timeout: embeddingTimeout, Transport: localhostTransport()},
	}
}

// Generate produces a vector embedding for the given text.
// It uses a circuit breaker to fail fast when the model service is down.
func (s *EmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if err := s.cb.allow(); err != nil {
		return nil, err
	}

	result, err := s.doGenerate(ctx, text)
	if err != nil {
		s.cb.recordFailure()

		return nil, err
	}

	s.cb.recordSuccess()

	return result, nil
}

func (s *EmbeddingService) doGenerate(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: s.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ollamaURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embedding request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama embed API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain body so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort drain before close.
		return nil, fmt.Errorf("ollama embed API returned status %d", resp.StatusCode)
	}

	var result embeddingResponse

	limited := io.LimitReader(resp.Body, 10<<20) // 10 MB
	if err := json.NewDecoder(limited).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama returned empty embeddings")
	}

	return result.Embeddings[0], nil
}
