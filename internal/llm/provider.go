package llm

import (
	"context"

	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider defines the text-generation operations used by services.
type Provider interface {
	// Configured reports whether a credential is available. When false,
	// callers skip the network entirely and use their fallbacks.
	Configured() bool

	// GenerateProfile issues one request for a structured personality
	// profile for the named toy. No retries.
	GenerateProfile(ctx context.Context, name string) (pal.RawProfile, error)

	// Chat issues one request with the given system prompt and history
	// and returns the assistant reply text.
	Chat(ctx context.Context, system string, history []ChatMessage) (string, error)
}
