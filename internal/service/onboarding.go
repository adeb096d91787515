package service

import (
	"context"

	"github.com/c-hri-sw-u/PalPal/internal/onboarding"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

// OnboardingService finalizes a completed wizard run: photos are uploaded,
// then the pal row is created in one insert. Any failure is surfaced and the
// caller's draft stays untouched, so the run can be retried.
type OnboardingService struct {
	Photos *PhotoService
	Pals   *PalService
}

func (s *OnboardingService) Finalize(ctx context.Context, ownerID string, sub onboarding.Submission) (pal.Pal, error) {
	var avatarURL string
	if sub.AvatarPhoto != "" {
		u, err := s.Photos.UploadAvatar(ctx, ownerID, sub.AvatarPhoto)
		if err != nil {
			return pal.Pal{}, err
		}
		avatarURL = u
	}

	photoURLs, err := s.Photos.UploadBodyPhotos(ctx, ownerID, sub.BodyPhotos)
	if err != nil {
		return pal.Pal{}, err
	}

	created, err := s.Pals.Create(ctx, ownerID, sub.Name, avatarURL, photoURLs, sub.Profile)
	if err != nil {
		return pal.Pal{}, err
	}
	_ = s.Pals.SetActivePal(ctx, created.ID)
	return created, nil
}
