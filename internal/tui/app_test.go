package tui

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/c-hri-sw-u/PalPal/internal/config"
	"github.com/c-hri-sw-u/PalPal/internal/onboarding"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
	"github.com/c-hri-sw-u/PalPal/internal/secrets"
	"github.com/c-hri-sw-u/PalPal/internal/service"
	"github.com/c-hri-sw-u/PalPal/internal/supabase"
)

type memRecords struct {
	inserted []string // tables, in call order
}

func (f *memRecords) Insert(_ context.Context, table string, record, out any) error {
	f.inserted = append(f.inserted, table)
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		return err
	}
	row["id"] = "p-new"
	stored, _ := json.Marshal(row)
	return json.Unmarshal(stored, out)
}

func (f *memRecords) Select(_ context.Context, _ string, _ supabase.Filters, _ string, _ any) error {
	return nil
}

func (f *memRecords) SelectOne(_ context.Context, _ string, _ supabase.Filters, _ any) error {
	return supabase.ErrNoRows
}

func (f *memRecords) Update(_ context.Context, _ string, _ supabase.Filters, _ any) error {
	return nil
}

type memObjects struct{ uploads int }

func (f *memObjects) Upload(_ context.Context, _, path string, _ []byte) (string, error) {
	f.uploads++
	return path, nil
}

func (f *memObjects) PublicURL(bucket, path string) string {
	return "https://cdn/" + bucket + "/" + path
}

func newTestApp(records *memRecords, objects *memObjects) *App {
	services := Services{
		Profile:    &service.ProfileService{}, // no provider: deterministic default
		Pals:       &service.PalService{Records: records},
		Onboarding: &service.OnboardingService{Photos: &service.PhotoService{Store: objects}, Pals: &service.PalService{Records: records}},
	}
	a := New(context.Background(), config.Config{}, services)
	a.state = screenHome
	a.user = &pal.User{ID: "u1", Username: "sam"}
	return a
}

func press(t *testing.T, a *App, msg tea.Msg) {
	t.Helper()
	_, cmd := a.Update(msg)
	if cmd == nil {
		return
	}
	if out := cmd(); out != nil {
		if _, isBatch := out.(tea.BatchMsg); !isBatch {
			a.Update(out)
		}
	}
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func key(typ tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: typ} }

func TestWizardFullFlow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	avatar := filepath.Join(dir, "avatar.jpg")
	require.NoError(t, os.WriteFile(avatar, []byte("jpeg"), 0o600))

	records := &memRecords{}
	objects := &memObjects{}
	a := newTestApp(records, objects)

	// home -> new pal
	press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	require.Equal(t, screenWizard, a.state)
	require.Nil(t, a.wizard)

	// name, then profile generation lands immediately (no provider)
	typeText(t, a, "Teddy")
	press(t, a, key(tea.KeyEnter))
	require.NotNil(t, a.wizard)
	require.NotNil(t, a.wizard.Profile())
	require.Equal(t, "ENFP", a.wizard.Profile().MBTI)

	// avatar capture and crop confirm
	typeText(t, a, avatar)
	press(t, a, key(tea.KeyEnter))
	require.Equal(t, onboarding.StepCrop, a.wizard.Step())
	press(t, a, key(tea.KeyEnter))
	require.Equal(t, onboarding.StepFront, a.wizard.Step())

	// skipping front jumps straight to review
	press(t, a, key(tea.KeyTab))
	require.Equal(t, onboarding.StepReviewMBTI, a.wizard.Step())

	// keep the generated type
	press(t, a, key(tea.KeyEnter))
	require.Equal(t, onboarding.StepReviewTraits, a.wizard.Step())

	// nudge the selected trait up
	press(t, a, key(tea.KeyRight))
	require.Equal(t, 65, a.wizard.Profile().Traits.Extraversion)
	press(t, a, key(tea.KeyEnter))
	require.Equal(t, onboarding.StepReviewStory, a.wizard.Step())

	// story buffer is prefilled from the profile
	require.Equal(t, a.wizard.Profile().Backstory, a.textInput)
	press(t, a, key(tea.KeyEnter))
	require.Equal(t, onboarding.StepReviewPsyche, a.wizard.Step())
	press(t, a, key(tea.KeyEnter))
	require.Equal(t, onboarding.StepReviewOverview, a.wizard.Step())

	// initialize: one avatar upload, no body uploads, one insert
	press(t, a, key(tea.KeyEnter))
	require.Equal(t, screenHome, a.state)
	require.Nil(t, a.wizard)
	require.Equal(t, 1, objects.uploads)
	require.Equal(t, []string{supabase.TablePals}, records.inserted)
	require.Len(t, a.pals, 1)
	require.Equal(t, "Teddy", a.pals[0].Name)
}

func TestWizardBackFromMBTICancels(t *testing.T) {
	t.Parallel()

	a := newTestApp(&memRecords{}, &memObjects{})
	dir := t.TempDir()
	avatar := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(avatar, []byte("jpeg"), 0o600))

	press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	typeText(t, a, "Rex")
	press(t, a, key(tea.KeyEnter))
	typeText(t, a, avatar)
	press(t, a, key(tea.KeyEnter))
	press(t, a, key(tea.KeyEnter)) // crop
	press(t, a, key(tea.KeyTab))   // skip front -> review
	require.Equal(t, onboarding.StepReviewMBTI, a.wizard.Step())

	press(t, a, key(tea.KeyEsc))
	require.Nil(t, a.wizard)
	require.Equal(t, screenHome, a.state)
}

func TestStaleProfileNotInstalledAcrossRuns(t *testing.T) {
	t.Parallel()

	a := newTestApp(&memRecords{}, &memObjects{})

	// first run: name it, hold on to the generation command instead of
	// letting it land
	press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	typeText(t, a, "Alpha")
	_, alphaCmd := a.Update(key(tea.KeyEnter))
	require.NotNil(t, alphaCmd)
	require.Nil(t, a.wizard.Profile())

	// cancel and start over with a different name
	press(t, a, key(tea.KeyEsc))
	require.Nil(t, a.wizard)
	press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	typeText(t, a, "Bravo")
	_, bravoCmd := a.Update(key(tea.KeyEnter))
	require.NotNil(t, bravoCmd)

	// the first run's result arrives late and must be dropped
	a.Update(alphaCmd())
	require.Nil(t, a.wizard.Profile())

	// the current run's result installs as usual
	a.Update(bravoCmd())
	require.NotNil(t, a.wizard.Profile())
	require.Contains(t, a.wizard.Profile().Backstory, "Bravo")
	require.NotContains(t, a.wizard.Profile().Backstory, "Alpha")
}

func TestHomeAPIKeyEntry(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	a := newTestApp(&memRecords{}, &memObjects{})

	press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	require.True(t, a.keyEditing)
	require.Contains(t, a.renderHome(), "AI API key")

	typeText(t, a, "sk-or-test")
	press(t, a, key(tea.KeyEnter))
	require.False(t, a.keyEditing)

	got, err := secrets.FetchAPIKey()
	require.NoError(t, err)
	require.Equal(t, "sk-or-test", got)
}

func TestBusyDisablesInput(t *testing.T) {
	t.Parallel()

	a := newTestApp(&memRecords{}, &memObjects{})
	a.busy = true
	before := a.palCursor
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	require.Nil(t, cmd)
	require.Equal(t, screenHome, a.state)
	require.Equal(t, before, a.palCursor)
}

func TestHomeEmptyState(t *testing.T) {
	t.Parallel()

	a := newTestApp(&memRecords{}, &memObjects{})
	view := a.renderHome()
	require.Contains(t, view, "No Pals Yet")
}
