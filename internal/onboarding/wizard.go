// Package onboarding implements the pal-creation wizard: an ordered
// sequence of capture and review steps accumulating a transient draft,
// submitted to the record store exactly once at the end.
package onboarding

import (
	"errors"
	"strings"

	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

// Step identifies the active wizard stage. Each stage only permits the
// operations defined for it; everything else returns ErrInvalidStep.
type Step int

const (
	StepAvatar Step = iota
	StepCrop
	StepFront
	StepBack
	StepLeft
	StepRight
	StepReviewMBTI
	StepReviewTraits
	StepReviewStory
	StepReviewPsyche
	StepReviewOverview
	StepSubmitted
	StepCancelled
)

func (s Step) String() string {
	switch s {
	case StepAvatar:
		return "avatar"
	case StepCrop:
		return "crop"
	case StepFront:
		return "front"
	case StepBack:
		return "back"
	case StepLeft:
		return "left"
	case StepRight:
		return "right"
	case StepReviewMBTI:
		return "review-mbti"
	case StepReviewTraits:
		return "review-traits"
	case StepReviewStory:
		return "review-story"
	case StepReviewPsyche:
		return "review-psyche"
	case StepReviewOverview:
		return "review-overview"
	case StepSubmitted:
		return "submitted"
	case StepCancelled:
		return "cancelled"
	}
	return "unknown"
}

// InReview reports whether s is one of the profile review stages.
func (s Step) InReview() bool {
	return s >= StepReviewMBTI && s <= StepReviewOverview
}

// View is a full-body photo angle.
type View int

const (
	ViewFront View = iota
	ViewBack
	ViewLeft
	ViewRight
)

var (
	ErrInvalidStep    = errors.New("onboarding: operation not valid at current step")
	ErrEmptyName      = errors.New("onboarding: name required")
	ErrNoPhoto        = errors.New("onboarding: no photo captured")
	ErrMissingProfile = errors.New("onboarding: profile required")
	ErrCannotSkip     = errors.New("onboarding: avatar photo cannot be skipped")
)

// Draft is the pal-in-progress record, owned exclusively by the wizard.
// It is never written externally before the single final creation call.
type Draft struct {
	Name        string
	AvatarPhoto string           // local image reference after crop
	BodyPhotos  map[View]*string // nil entry = skipped
	Profile     *pal.GeneratedProfile
}

// Wizard walks the capture and review steps in order. Not safe for
// concurrent use; a single active screen drives it.
type Wizard struct {
	step    Step
	draft   Draft
	pending string // captured avatar photo awaiting crop
}

// New starts a wizard for a named pal. The name is trimmed, must be
// non-empty, and is immutable for the rest of the flow.
func New(name string) (*Wizard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Wizard{
		step: StepAvatar,
		draft: Draft{
			Name:       name,
			BodyPhotos: make(map[View]*string, 4),
		},
	}, nil
}

// Step returns the active stage.
func (w *Wizard) Step() Step { return w.step }

// Draft returns a snapshot of the accumulated draft.
func (w *Wizard) Draft() Draft {
	d := w.draft
	d.BodyPhotos = make(map[View]*string, len(w.draft.BodyPhotos))
	for k, v := range w.draft.BodyPhotos {
		d.BodyPhotos[k] = v
	}
	if w.draft.Profile != nil {
		p := *w.draft.Profile
		d.Profile = &p
	}
	return d
}

// SetProfile installs the initial generated profile. It may be called at
// any point before review; entering review requires it.
func (w *Wizard) SetProfile(p pal.GeneratedProfile) {
	w.draft.Profile = &p
}

// Profile returns the current profile, or nil before generation.
func (w *Wizard) Profile() *pal.GeneratedProfile {
	if w.draft.Profile == nil {
		return nil
	}
	p := *w.draft.Profile
	return &p
}

// CaptureAvatar records a captured or picked avatar photo and moves to the
// crop stage.
func (w *Wizard) CaptureAvatar(uri string) error {
	if w.step != StepAvatar {
		return ErrInvalidStep
	}
	if uri == "" {
		return ErrNoPhoto
	}
	w.pending = uri
	w.step = StepCrop
	return nil
}

// CompleteCrop stores the cropped avatar and advances to the front view.
func (w *Wizard) CompleteCrop(croppedURI string) error {
	if w.step != StepCrop {
		return ErrInvalidStep
	}
	if croppedURI == "" {
		return ErrNoPhoto
	}
	w.draft.AvatarPhoto = croppedURI
	w.pending = ""
	w.step = StepFront
	return nil
}

// CancelCrop returns to the avatar step, discarding the pending photo.
func (w *Wizard) CancelCrop() error {
	if w.step != StepCrop {
		return ErrInvalidStep
	}
	w.pending = ""
	w.step = StepAvatar
	return nil
}

// ConfirmPhoto stores the photo for the current body view and advances one
// step. Confirming the right view enters profile review, which requires an
// initial profile.
func (w *Wizard) ConfirmPhoto(uri string) error {
	v, ok := w.bodyView()
	if !ok {
		return ErrInvalidStep
	}
	if uri == "" {
		return ErrNoPhoto
	}
	u := uri
	return w.advanceBody(v, &u)
}

// Skip records no photo for the current body view. Skipping the front view
// abandons the remaining body views entirely and jumps straight to review;
// skipping back/left/right advances a single step.
func (w *Wizard) Skip() error {
	v, ok := w.bodyView()
	if !ok {
		if w.step == StepAvatar || w.step == StepCrop {
			return ErrCannotSkip
		}
		return ErrInvalidStep
	}
	if v == ViewFront {
		if w.draft.Profile == nil {
			return ErrMissingProfile
		}
		for _, view := range []View{ViewFront, ViewBack, ViewLeft, ViewRight} {
			w.draft.BodyPhotos[view] = nil
		}
		w.step = StepReviewMBTI
		return nil
	}
	return w.advanceBody(v, nil)
}

func (w *Wizard) bodyView() (View, bool) {
	switch w.step {
	case StepFront:
		return ViewFront, true
	case StepBack:
		return ViewBack, true
	case StepLeft:
		return ViewLeft, true
	case StepRight:
		return ViewRight, true
	}
	return 0, false
}

// advanceBody stores the photo (or skip) and moves forward. The transition
// out of the last body view enters review, which requires the initial
// profile; the precondition is checked before anything mutates.
func (w *Wizard) advanceBody(v View, uri *string) error {
	if w.step == StepRight && w.draft.Profile == nil {
		return ErrMissingProfile
	}
	w.draft.BodyPhotos[v] = uri
	if w.step == StepRight {
		w.step = StepReviewMBTI
		return nil
	}
	w.step++
	return nil
}

// Continue advances to the next review stage.
func (w *Wizard) Continue() error {
	if !w.step.InReview() || w.step == StepReviewOverview {
		return ErrInvalidStep
	}
	w.step++
	return nil
}

// Back moves one review stage backward. Backing out of the first stage
// cancels the wizard entirely; the draft is discarded by the caller.
func (w *Wizard) Back() error {
	if !w.step.InReview() {
		return ErrInvalidStep
	}
	if w.step == StepReviewMBTI {
		w.step = StepCancelled
		return nil
	}
	w.step--
	return nil
}

// Reroll replaces the whole profile with a freshly generated one,
// discarding any manual edits made so far. Not available on the terminal
// overview stage.
func (w *Wizard) Reroll(p pal.GeneratedProfile) error {
	if !w.step.InReview() || w.step == StepReviewOverview {
		return ErrInvalidStep
	}
	w.draft.Profile = &p
	return nil
}
