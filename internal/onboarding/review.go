package onboarding

import (
	"strings"

	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

// Edit operations mutate the in-memory draft profile only. Nothing is
// persisted until the overview stage submits.

// SetMBTI replaces the type code. Valid on the MBTI stage.
func (w *Wizard) SetMBTI(code string) error {
	if w.step != StepReviewMBTI {
		return ErrInvalidStep
	}
	w.draft.Profile.MBTI = code
	return nil
}

// AdjustTrait shifts one trait by delta, bounded to [0,100]. Valid on the
// traits stage.
func (w *Wizard) AdjustTrait(v TraitKey, delta int) error {
	if w.step != StepReviewTraits {
		return ErrInvalidStep
	}
	t := &w.draft.Profile.Traits
	var field *int
	switch v {
	case TraitExtraversion:
		field = &t.Extraversion
	case TraitAgreeableness:
		field = &t.Agreeableness
	case TraitOpenness:
		field = &t.Openness
	case TraitConscientiousness:
		field = &t.Conscientiousness
	case TraitNeuroticism:
		field = &t.Neuroticism
	default:
		return ErrInvalidStep
	}
	n := *field + delta
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	*field = n
	return nil
}

// TraitKey names one of the five trait dimensions for editing.
type TraitKey int

const (
	TraitExtraversion TraitKey = iota
	TraitAgreeableness
	TraitOpenness
	TraitConscientiousness
	TraitNeuroticism
)

// TraitLabels maps keys to display labels, in fixed order.
var TraitLabels = []struct {
	Key   TraitKey
	Label string
}{
	{TraitExtraversion, "Extraversion"},
	{TraitAgreeableness, "Agreeableness"},
	{TraitOpenness, "Openness"},
	{TraitConscientiousness, "Conscientiousness"},
	{TraitNeuroticism, "Neuroticism"},
}

// SetBackstory replaces the backstory text. Valid on the story stage.
func (w *Wizard) SetBackstory(text string) error {
	if w.step != StepReviewStory {
		return ErrInvalidStep
	}
	w.draft.Profile.Backstory = text
	return nil
}

// SetDescription replaces the personality description. Valid on the
// psyche stage.
func (w *Wizard) SetDescription(text string) error {
	if w.step != StepReviewPsyche {
		return ErrInvalidStep
	}
	w.draft.Profile.Description = text
	return nil
}

// Submission is the payload for the single create-pal call.
type Submission struct {
	Name        string
	AvatarPhoto string    // "" if absent
	BodyPhotos  [4]string // front, back, left, right; "" when skipped
	Profile     pal.GeneratedProfile
}

// BuildSubmission validates preconditions and assembles the creation
// payload. Valid only on the overview stage; no external call has been
// made when it returns an error.
func (w *Wizard) BuildSubmission() (Submission, error) {
	if w.step != StepReviewOverview {
		return Submission{}, ErrInvalidStep
	}
	if strings.TrimSpace(w.draft.Name) == "" {
		return Submission{}, ErrEmptyName
	}
	if w.draft.Profile == nil {
		return Submission{}, ErrMissingProfile
	}
	s := Submission{
		Name:        w.draft.Name,
		AvatarPhoto: w.draft.AvatarPhoto,
		Profile:     *w.draft.Profile,
	}
	for i, v := range []View{ViewFront, ViewBack, ViewLeft, ViewRight} {
		if uri := w.draft.BodyPhotos[v]; uri != nil {
			s.BodyPhotos[i] = *uri
		}
	}
	return s, nil
}

// Complete marks the wizard submitted after a successful create call.
// A failed call leaves the wizard on the overview stage with the draft
// intact so the user can retry.
func (w *Wizard) Complete() error {
	if w.step != StepReviewOverview {
		return ErrInvalidStep
	}
	w.step = StepSubmitted
	return nil
}

// Cancel abandons the wizard; the draft is never persisted.
func (w *Wizard) Cancel() {
	if w.step == StepSubmitted {
		return
	}
	w.step = StepCancelled
}
