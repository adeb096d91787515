package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/c-hri-sw-u/PalPal/internal/llm"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

// ProfileService produces a personality profile for a pal-to-be. Generation
// never fails outward: any provider problem yields the deterministic default
// profile so onboarding can always proceed.
type ProfileService struct {
	Provider llm.Provider
	Logger   *zap.Logger
}

func (s *ProfileService) Generate(ctx context.Context, name string) pal.GeneratedProfile {
	if s.Provider == nil || !s.Provider.Configured() {
		return pal.DefaultProfile(name)
	}
	raw, err := s.Provider.GenerateProfile(ctx, name)
	if err != nil {
		s.logger().Warn("profile generation failed, using default", zap.String("name", name), zap.Error(err))
		return pal.DefaultProfile(name)
	}
	return pal.NormalizeProfile(name, raw)
}

func (s *ProfileService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
