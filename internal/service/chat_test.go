package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c-hri-sw-u/PalPal/internal/pal"
	"github.com/c-hri-sw-u/PalPal/internal/supabase"
)

func chatPal() pal.Pal {
	p := pal.DefaultProfile("Teddy")
	return pal.Pal{ID: "p1", Name: "Teddy", SystemPrompt: pal.SystemPrompt("Teddy", p)}
}

func TestSendRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	store := &fakeRecords{}
	svc := &ChatService{Records: store, Provider: &fakeProvider{configured: true}}

	_, err := svc.Send(context.Background(), chatPal(), "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)
	require.Empty(t, store.inserts)
}

func TestSendStoresBothTurns(t *testing.T) {
	t.Parallel()

	store := &fakeRecords{selectFn: func(table string, filters supabase.Filters, order string, out any) error {
		require.Equal(t, supabase.TableMessages, table)
		require.Equal(t, "p1", filters["pal_id"])
		require.Equal(t, "created_at.asc", order)
		return json.Unmarshal([]byte(`[{"id":"m1","role":"user","content":"hi"},{"id":"m2","role":"assistant","content":"hello!"}]`), out)
	}}
	provider := &fakeProvider{configured: true, reply: "nice to see you"}
	svc := &ChatService{Records: store, Provider: provider}

	reply, err := svc.Send(context.Background(), chatPal(), "how are you?")
	require.NoError(t, err)
	require.Equal(t, "assistant", reply.Role)
	require.Equal(t, "nice to see you", reply.Content)
	require.NotEmpty(t, reply.ID)

	// system prompt and full history reach the provider
	require.Contains(t, provider.lastSystem, "You are Teddy, a ENFP personality type toy.")
	require.Len(t, provider.lastTurns, 3)
	require.Equal(t, "how are you?", provider.lastTurns[2].Content)

	require.Len(t, store.inserts, 2)
	var userRow map[string]string
	require.NoError(t, json.Unmarshal(store.inserts[0].payload, &userRow))
	require.Equal(t, "user", userRow["role"])
	require.Equal(t, "how are you?", userRow["content"])
	require.NotEmpty(t, userRow["id"])
}

func TestSendSurfacesProviderError(t *testing.T) {
	t.Parallel()

	store := &fakeRecords{}
	svc := &ChatService{Records: store, Provider: &fakeProvider{configured: true, chatErr: errors.New("429")}}

	_, err := svc.Send(context.Background(), chatPal(), "hi")
	require.Error(t, err)
	require.Len(t, store.inserts, 1) // the user turn was stored before the failure
}

func TestHistoryError(t *testing.T) {
	t.Parallel()

	store := &fakeRecords{selectFn: func(string, supabase.Filters, string, any) error {
		return errors.New("network down")
	}}
	svc := &ChatService{Records: store, Provider: &fakeProvider{configured: true}}

	_, err := svc.History(context.Background(), "p1")
	require.Error(t, err)
}
