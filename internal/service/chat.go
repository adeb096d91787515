package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/c-hri-sw-u/PalPal/internal/llm"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
	"github.com/c-hri-sw-u/PalPal/internal/supabase"
)

var ErrEmptyMessage = errors.New("service: message content is empty")

// ChatService persists the conversation with a pal and relays it to the
// language model using the pal's creation-time system prompt. Unlike profile
// generation there is no fallback: provider errors are surfaced.
type ChatService struct {
	Records  RecordStore
	Provider llm.Provider
}

// History returns the conversation with a pal, oldest first.
func (s *ChatService) History(ctx context.Context, palID string) ([]pal.Message, error) {
	var msgs []pal.Message
	err := s.Records.Select(ctx, supabase.TableMessages, supabase.Filters{"pal_id": palID}, "created_at.asc", &msgs)
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	return msgs, nil
}

// Send stores the user's message, asks the model for the pal's reply, and
// stores that too. The stored assistant message is returned.
func (s *ChatService) Send(ctx context.Context, p pal.Pal, content string) (pal.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return pal.Message{}, ErrEmptyMessage
	}

	history, err := s.History(ctx, p.ID)
	if err != nil {
		return pal.Message{}, err
	}

	if err := s.Records.Insert(ctx, supabase.TableMessages, messageInsert{
		ID:      uuid.NewString(),
		PalID:   p.ID,
		Role:    "user",
		Content: content,
	}, nil); err != nil {
		return pal.Message{}, fmt.Errorf("store message: %w", err)
	}

	turns := make([]llm.ChatMessage, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, llm.ChatMessage{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, llm.ChatMessage{Role: "user", Content: content})

	reply, err := s.Provider.Chat(ctx, p.SystemPrompt, turns)
	if err != nil {
		return pal.Message{}, fmt.Errorf("chat: %w", err)
	}

	record := messageInsert{
		ID:      uuid.NewString(),
		PalID:   p.ID,
		Role:    "assistant",
		Content: reply,
	}
	var stored pal.Message
	if err := s.Records.Insert(ctx, supabase.TableMessages, record, &stored); err != nil {
		return pal.Message{}, fmt.Errorf("store reply: %w", err)
	}
	return stored, nil
}

type messageInsert struct {
	ID      string `json:"id"`
	PalID   string `json:"pal_id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}
