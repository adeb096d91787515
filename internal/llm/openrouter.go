package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "openrouter/auto"
	refererURL     = "https://palpal.app"
)

const profileSystemPrompt = `You are a creative toy personality expert. Based on the toy's name, generate a unique and charming personality profile.

Output JSON format only:
{
  "mbti": "16 personality type (e.g., ENFP, ISTJ)",
  "traits": { "extraversion": 0-100, "agreeableness": 0-100, "openness": 0-100, "conscientiousness": 0-100, "neuroticism": 0-100 },
  "backstory": "2-3 sentence origin story about this toy's history",
  "personality_description": "3-4 sentences describing how this toy behaves and interacts"
}`

// OpenRouterProvider speaks the OpenAI-compatible chat completions API.
type OpenRouterProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOpenRouterProvider(apiKey, model, baseURL string, logger *zap.Logger) *OpenRouterProvider {
	if model == "" {
		model = defaultModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenRouterProvider{
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (p *OpenRouterProvider) Configured() bool { return p.apiKey != "" }

var ErrNoAPIKey = fmt.Errorf("llm: api key not configured")

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateProfile issues exactly one completion request and parses the
// reply content as a RawProfile. Unparseable content gets one repair pass
// before being reported as an error.
func (p *OpenRouterProvider) GenerateProfile(ctx context.Context, name string) (pal.RawProfile, error) {
	content, err := p.complete(ctx, profileSystemPrompt, []ChatMessage{
		{Role: "user", Content: fmt.Sprintf("Generate a personality for a toy named %q", name)},
	})
	if err != nil {
		return pal.RawProfile{}, err
	}

	var raw pal.RawProfile
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(content)
		if rerr != nil {
			return pal.RawProfile{}, fmt.Errorf("llm: parse profile: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return pal.RawProfile{}, fmt.Errorf("llm: parse repaired profile: %w", err)
		}
	}
	return raw, nil
}

// Chat issues one completion request with the pal's system prompt and the
// conversation so far.
func (p *OpenRouterProvider) Chat(ctx context.Context, system string, history []ChatMessage) (string, error) {
	return p.complete(ctx, system, history)
}

func (p *OpenRouterProvider) complete(ctx context.Context, system string, msgs []ChatMessage) (string, error) {
	if !p.Configured() {
		return "", ErrNoAPIKey
	}

	messages := append([]ChatMessage{{Role: "system", Content: system}}, msgs...)
	body, err := json.Marshal(chatRequest{Model: p.model, Messages: messages, Temperature: 0.7})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	endpoint := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("HTTP-Referer", refererURL)

	p.logger.Debug("chat completion request", zap.String("model", p.model), zap.Int("messages", len(messages)))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("chat completion failed", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("llm: completion status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
