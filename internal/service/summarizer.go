package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	summaryTimeout = 120 * time.Second

	// maxSummaryMembers caps the prompt context for large communities.
	maxSummaryMembers = 50
)

// SummarizerService generates community titles and summaries via the
// Ollama generate API.
type SummarizerService struct {
	ollamaURL string
	model     string
	client    *http.Client
	cb        breaker
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewSummarizerService creates a SummarizerService for the given Ollama
// endpoint and model.
func NewSummarizerService(ollamaURL, model string) *SummarizerService {
	return &SummarizerService{
		ollamaURL: ollamaURL,
		model:     model,
		client:    &http.Client{Timeout: summaryTimeout, Transport: localhostTransport()},
	}
}

// Summarize produces a short title and a 2-3 sentence summary for a
// community given one descriptive line per member.
func (s *SummarizerService) Summarize(ctx context.Context, members []string) (title, summary string, err error) {
	if len(members) == 0 {
		return "Empty Community", "No members found.", nil
	}

	if err := s.cb.allow(); err != nil {
		return "", "", err
	}

	text, err := s.doGenerate(ctx, buildSummaryPrompt(members))
	if err != nil {
		s.cb.recordFailure()

		return "", "", err
	}

	s.cb.recordSuccess()

	title, summary = parseSummary(text)

	return title, summary, nil
}

func buildSummaryPrompt(members []string) string {
	if len(members) > maxSummaryMembers {
		members = members[:maxSummaryMembers]
	}

	var b strings.Builder
	b.WriteString("You are an expert bioinformatician analyzing a workflow tool graph.\n\n")
	b.WriteString("Members:\n")
	b.WriteString(strings.Join(members, "\n"))
	b.WriteString("\n\n")
	b.WriteString("1. Analyze the common functionality.\n")
	b.WriteString("2. Provide a short, descriptive Title (e.g., \"RNA-Seq Alignment\").\n")
	b.WriteString("3. Provide a concise Summary (2-3 sentences).\n\n")
	b.WriteString("Format:\nTitle: <Title>\nSummary: <Summary>\n")

	return b.String()
}

// parseSummary extracts the Title and Summary lines from a model response.
// Unparseable responses fall back to placeholders rather than failing the
// run.
func parseSummary(text string) (title, summary string) {
	title = "Unknown"
	summary = "No summary generated."

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Title:"):
			title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
		case strings.HasPrefix(line, "Summary:"):
			summary = strings.TrimSpace(strings.TrimPrefix(line, "Summary:"))
		}
	}

	return title, summary
}

func (s *SummarizerService) doGenerate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: s.model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ollamaURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating generate request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama generate API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain body so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort drain before close.
		return "", fmt.Errorf("ollama generate API returned status %d", resp.StatusCode)
	}

	var result generateResponse

	limited := io.LimitReader(resp.Body, 10<<20) // 10 MB
	if err := json.NewDecoder(limited).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}

	return strings.TrimSpace(result.Response), nil
}
