package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/c-hri-sw-u/PalPal/internal/onboarding"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

// The wizard screen drives an onboarding.Wizard. The screen is pure glue:
// every transition rule lives in the wizard itself, and precondition errors
// surface as status text.

func (a *App) startWizard() {
	a.state = screenWizard
	a.wizard = nil
	a.nameInput = ""
	a.pathInput = ""
	a.capturedPath = ""
	a.mbtiInput = ""
	a.mbtiCursor = 0
	a.traitCursor = 0
	a.textInput = ""
	a.status = ""
}

func (a *App) cancelWizard() {
	if a.wizard != nil {
		a.wizard.Cancel()
	}
	a.wizard = nil
	a.state = screenHome
	a.status = "onboarding cancelled"
}

func (a *App) handleWizardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.wizard == nil {
		return a.handleNameKey(m)
	}
	switch a.wizard.Step() {
	case onboarding.StepAvatar:
		return a.handleAvatarKey(m)
	case onboarding.StepCrop:
		return a.handleCropKey(m)
	case onboarding.StepFront, onboarding.StepBack, onboarding.StepLeft, onboarding.StepRight:
		return a.handleBodyKey(m)
	case onboarding.StepReviewMBTI:
		return a.handleMBTIKey(m)
	case onboarding.StepReviewTraits:
		return a.handleTraitsKey(m)
	case onboarding.StepReviewStory, onboarding.StepReviewPsyche:
		return a.handleTextStageKey(m)
	case onboarding.StepReviewOverview:
		return a.handleOverviewKey(m)
	}
	return a, nil
}

func (a *App) handleNameKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.state = screenHome
		a.status = ""
		return a, nil
	case tea.KeyEnter:
		wiz, err := onboarding.New(a.nameInput)
		if err != nil {
			a.status = "give your pal a name"
			return a, nil
		}
		a.wizard = wiz
		a.wizardRun++
		a.status = ""
		// generation runs while photos are captured
		return a, a.generateProfileCmd(a.wizardRun, wiz.Draft().Name)
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.nameInput) > 0 {
			a.nameInput = a.nameInput[:len(a.nameInput)-1]
		}
	case tea.KeySpace:
		a.nameInput += " "
	case tea.KeyRunes:
		a.nameInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleAvatarKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.cancelWizard()
		return a, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(a.pathInput)
		if err := a.wizard.CaptureAvatar(path); err != nil {
			a.status = "enter a photo path"
			return a, nil
		}
		a.capturedPath = path
		a.pathInput = ""
		a.status = ""
	case tea.KeyTab:
		a.status = "the avatar photo cannot be skipped"
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.pathInput) > 0 {
			a.pathInput = a.pathInput[:len(a.pathInput)-1]
		}
	case tea.KeySpace:
		a.pathInput += " "
	case tea.KeyRunes:
		a.pathInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleCropKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEnter:
		if err := a.wizard.CompleteCrop(a.capturedPath); err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.capturedPath = ""
		a.status = ""
	case tea.KeyEsc:
		_ = a.wizard.CancelCrop()
		a.capturedPath = ""
		a.status = ""
	}
	return a, nil
}

func (a *App) handleBodyKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.cancelWizard()
		return a, nil
	case tea.KeyTab:
		if err := a.wizard.Skip(); err != nil {
			a.status = a.wizardErrText(err)
			return a, nil
		}
		a.pathInput = ""
		a.status = ""
		a.syncReviewInputs()
	case tea.KeyEnter:
		path := strings.TrimSpace(a.pathInput)
		if path == "" {
			a.status = "enter a photo path, or [tab] to skip"
			return a, nil
		}
		if err := a.wizard.ConfirmPhoto(path); err != nil {
			a.status = a.wizardErrText(err)
			return a, nil
		}
		a.pathInput = ""
		a.status = ""
		a.syncReviewInputs()
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.pathInput) > 0 {
			a.pathInput = a.pathInput[:len(a.pathInput)-1]
		}
	case tea.KeySpace:
		a.pathInput += " "
	case tea.KeyRunes:
		a.pathInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) wizardErrText(err error) string {
	if err == onboarding.ErrMissingProfile {
		return "personality still generating, one moment"
	}
	return err.Error()
}

// syncReviewInputs seeds the editable buffers when a review stage becomes
// active.
func (a *App) syncReviewInputs() {
	p := a.wizard.Profile()
	if p == nil {
		return
	}
	switch a.wizard.Step() {
	case onboarding.StepReviewMBTI:
		a.mbtiInput = ""
		a.mbtiCursor = 0
		for i, c := range pal.MBTICodes {
			if c == p.MBTI {
				a.mbtiCursor = i
			}
		}
	case onboarding.StepReviewStory:
		a.textInput = p.Backstory
	case onboarding.StepReviewPsyche:
		a.textInput = p.Description
	}
}

func (a *App) handleMBTIKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		if err := a.wizard.Back(); err == nil && a.wizard.Step() == onboarding.StepCancelled {
			a.wizard = nil
			a.state = screenHome
			a.status = "onboarding cancelled"
		}
		return a, nil
	case tea.KeyUp:
		if a.mbtiCursor > 0 {
			a.mbtiCursor--
		}
		return a, nil
	case tea.KeyDown:
		if a.mbtiCursor < len(pal.MBTICodes)-1 {
			a.mbtiCursor++
		}
		return a, nil
	case tea.KeyCtrlR:
		a.busy = true
		return a, a.rerollCmd(a.wizard.Draft().Name)
	case tea.KeyEnter:
		code := pal.MBTICodes[a.mbtiCursor]
		if typed := strings.TrimSpace(a.mbtiInput); typed != "" {
			match := pal.ClosestMBTI(typed)
			if match == "" {
				a.status = fmt.Sprintf("%q does not look like a type code", typed)
				return a, nil
			}
			code = match
		}
		_ = a.wizard.SetMBTI(code)
		_ = a.wizard.Continue()
		a.status = ""
		a.syncReviewInputs()
		return a, nil
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.mbtiInput) > 0 {
			a.mbtiInput = a.mbtiInput[:len(a.mbtiInput)-1]
		}
	case tea.KeyRunes:
		a.mbtiInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleTraitsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		_ = a.wizard.Back()
		a.syncReviewInputs()
	case "up", "k":
		if a.traitCursor > 0 {
			a.traitCursor--
		}
	case "down", "j":
		if a.traitCursor < len(onboarding.TraitLabels)-1 {
			a.traitCursor++
		}
	case "left", "h":
		_ = a.wizard.AdjustTrait(onboarding.TraitLabels[a.traitCursor].Key, -5)
	case "right", "l":
		_ = a.wizard.AdjustTrait(onboarding.TraitLabels[a.traitCursor].Key, +5)
	case "r":
		a.busy = true
		return a, a.rerollCmd(a.wizard.Draft().Name)
	case "enter":
		_ = a.wizard.Continue()
		a.status = ""
		a.syncReviewInputs()
	}
	return a, nil
}

func (a *App) handleTextStageKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	story := a.wizard.Step() == onboarding.StepReviewStory
	switch m.Type {
	case tea.KeyEsc:
		_ = a.wizard.Back()
		a.syncReviewInputs()
		return a, nil
	case tea.KeyCtrlR:
		a.busy = true
		return a, a.rerollCmd(a.wizard.Draft().Name)
	case tea.KeyEnter:
		if story {
			_ = a.wizard.SetBackstory(a.textInput)
		} else {
			_ = a.wizard.SetDescription(a.textInput)
		}
		_ = a.wizard.Continue()
		a.status = ""
		a.syncReviewInputs()
		return a, nil
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.textInput) > 0 {
			a.textInput = a.textInput[:len(a.textInput)-1]
		}
	case tea.KeySpace:
		a.textInput += " "
	case tea.KeyRunes:
		a.textInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleOverviewKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		_ = a.wizard.Back()
		a.syncReviewInputs()
	case tea.KeyEnter:
		sub, err := a.wizard.BuildSubmission()
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.status = "initializing " + sub.Name + "..."
		a.busy = true
		return a, a.finalizeCmd(sub)
	}
	return a, nil
}

// rendering

func (a *App) renderWizard() string {
	if a.wizard == nil {
		return a.renderNameStage()
	}
	switch a.wizard.Step() {
	case onboarding.StepAvatar:
		return a.renderPhotoStage("Avatar photo", "[enter] Use photo  [esc] Cancel")
	case onboarding.StepCrop:
		return a.renderCropStage()
	case onboarding.StepFront:
		return a.renderPhotoStage("Full body (front)", "[enter] Confirm  [tab] Skip all views  [esc] Cancel")
	case onboarding.StepBack:
		return a.renderPhotoStage("Full body (back)", "[enter] Confirm  [tab] Skip  [esc] Cancel")
	case onboarding.StepLeft:
		return a.renderPhotoStage("Full body (left)", "[enter] Confirm  [tab] Skip  [esc] Cancel")
	case onboarding.StepRight:
		return a.renderPhotoStage("Full body (right)", "[enter] Confirm  [tab] Skip  [esc] Cancel")
	case onboarding.StepReviewMBTI:
		return a.renderMBTIStage()
	case onboarding.StepReviewTraits:
		return a.renderTraitsStage()
	case onboarding.StepReviewStory:
		return a.renderTextStage("Backstory")
	case onboarding.StepReviewPsyche:
		return a.renderTextStage("Personality")
	case onboarding.StepReviewOverview:
		return a.renderOverview()
	}
	return ""
}

func (a *App) renderNameStage() string {
	title := titleStyle.Render("New Pal")
	body := fmt.Sprintf("Name: %s\n[enter] Continue  [esc] Cancel", a.nameInput)
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderPhotoStage(label, footer string) string {
	title := titleStyle.Render(label)
	body := fmt.Sprintf("Photo path: %s\n%s", a.pathInput, footer)
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderCropStage() string {
	title := titleStyle.Render("Crop avatar")
	body := fmt.Sprintf("Using: %s\n[enter] Confirm crop  [esc] Retake", a.capturedPath)
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderMBTIStage() string {
	title := titleStyle.Render("Personality type")
	out := title + "\n"
	for i, c := range pal.MBTICodes {
		marker := " "
		if i == a.mbtiCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %s", marker, c)
		if (i+1)%4 == 0 {
			out += "\n"
		} else {
			out += "   "
		}
	}
	out += fmt.Sprintf("Or type a code: %s", a.mbtiInput)
	if typed := strings.TrimSpace(a.mbtiInput); typed != "" && !pal.IsCanonicalMBTI(strings.ToUpper(typed)) {
		if match := pal.ClosestMBTI(typed); match != "" {
			out += subtleStyle.Render("  (did you mean " + match + "?)")
		}
	}
	out += "\n[enter] Select & continue  [ctrl+r] Re-roll  [esc] Cancel onboarding"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderTraitsStage() string {
	title := titleStyle.Render("Traits")
	out := title + "\n"
	p := a.wizard.Profile()
	if p == nil {
		return out
	}
	values := map[onboarding.TraitKey]int{
		onboarding.TraitExtraversion:      p.Traits.Extraversion,
		onboarding.TraitAgreeableness:     p.Traits.Agreeableness,
		onboarding.TraitOpenness:          p.Traits.Openness,
		onboarding.TraitConscientiousness: p.Traits.Conscientiousness,
		onboarding.TraitNeuroticism:       p.Traits.Neuroticism,
	}
	for i, tl := range onboarding.TraitLabels {
		marker := " "
		if i == a.traitCursor {
			marker = "▶"
		}
		v := values[tl.Key]
		filled := v / 5
		if filled < 0 {
			filled = 0
		}
		if filled > 20 {
			filled = 20
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
		out += fmt.Sprintf("%s %-18s %s %3d\n", marker, tl.Label, bar, v)
	}
	out += "[←/→] Adjust  [↑/↓] Move  [r] Re-roll  [enter] Continue  [esc] Back"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderTextStage(label string) string {
	title := titleStyle.Render(label)
	body := fmt.Sprintf("%s\n[enter] Save & continue  [ctrl+r] Re-roll  [esc] Back", a.textInput)
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderOverview() string {
	title := titleStyle.Render("Overview")
	p := a.wizard.Profile()
	d := a.wizard.Draft()
	out := title + "\n"
	out += fmt.Sprintf("Name: %s\n", d.Name)
	if p != nil {
		out += fmt.Sprintf("Type: %s\n", p.MBTI)
		out += fmt.Sprintf("Backstory: %s\n", p.Backstory)
		out += fmt.Sprintf("Personality: %s\n", p.Description)
	}
	photos := 0
	for _, uri := range d.BodyPhotos {
		if uri != nil {
			photos++
		}
	}
	out += fmt.Sprintf("Body photos: %d of 4\n", photos)
	out += "[enter] Initialize Pal  [esc] Back"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}
