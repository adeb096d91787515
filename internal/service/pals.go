package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/c-hri-sw-u/PalPal/internal/database/repository"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
	"github.com/c-hri-sw-u/PalPal/internal/supabase"
)

const listPalsTimeout = 10 * time.Second

var (
	ErrMissingName    = errors.New("service: pal name is required")
	ErrMissingProfile = errors.New("service: personality profile is required")
)

// RecordStore is the PostgREST surface the services depend on.
type RecordStore interface {
	Insert(ctx context.Context, table string, record, out any) error
	Select(ctx context.Context, table string, filters supabase.Filters, order string, out any) error
	SelectOne(ctx context.Context, table string, filters supabase.Filters, out any) error
	Update(ctx context.Context, table string, filters supabase.Filters, record any) error
}

// PalService creates pals and keeps the local cache in step with the
// record store.
type PalService struct {
	Records RecordStore
	Cache   *repository.PalCacheRepo
	State   *repository.StateRepo
	Logger  *zap.Logger
}

type palInsert struct {
	OwnerID        string     `json:"owner_id"`
	Name           string     `json:"name"`
	AvatarURL      string     `json:"avatar_url"`
	FullBodyPhotos []string   `json:"full_body_photos"`
	MBTI           string     `json:"mbti"`
	Traits         pal.Traits `json:"traits"`
	Backstory      string     `json:"backstory"`
	Description    string     `json:"personality_description"`
	SystemPrompt   string     `json:"system_prompt"`
}

// Create validates locally, then performs the single insert. The stored row
// (with server-assigned id and timestamps) is returned and cached.
func (s *PalService) Create(ctx context.Context, ownerID, name, avatarURL string, photos [4]string, profile pal.GeneratedProfile) (pal.Pal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return pal.Pal{}, ErrMissingName
	}
	if profile.MBTI == "" {
		return pal.Pal{}, ErrMissingProfile
	}

	record := palInsert{
		OwnerID:        ownerID,
		Name:           name,
		AvatarURL:      avatarURL,
		FullBodyPhotos: photos[:],
		MBTI:           profile.MBTI,
		Traits:         profile.Traits,
		Backstory:      profile.Backstory,
		Description:    profile.Description,
		SystemPrompt:   pal.SystemPrompt(name, profile),
	}
	var created pal.Pal
	if err := s.Records.Insert(ctx, supabase.TablePals, record, &created); err != nil {
		return pal.Pal{}, fmt.Errorf("create pal: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Upsert(ctx, created); err != nil {
			s.logger().Warn("pal cache upsert failed", zap.String("pal_id", created.ID), zap.Error(err))
		}
	}
	return created, nil
}

// ListPals loads the owner's pals newest-first. The remote call is bounded;
// when it fails the cached copies are served instead.
func (s *PalService) ListPals(ctx context.Context, ownerID string) ([]pal.Pal, error) {
	ctx, cancel := context.WithTimeout(ctx, listPalsTimeout)
	defer cancel()

	var pals []pal.Pal
	err := s.Records.Select(ctx, supabase.TablePals, supabase.Filters{"owner_id": ownerID}, "created_at.desc", &pals)
	if err != nil {
		if s.Cache == nil {
			return nil, fmt.Errorf("list pals: %w", err)
		}
		s.logger().Warn("remote pal list failed, serving cache", zap.Error(err))
		cached, cacheErr := s.Cache.List(ctx, ownerID)
		if cacheErr != nil {
			return nil, fmt.Errorf("list pals: %w", err)
		}
		return cached, nil
	}

	if s.Cache != nil {
		if err := s.Cache.Replace(ctx, ownerID, pals); err != nil {
			s.logger().Warn("pal cache replace failed", zap.Error(err))
		}
	}
	return pals, nil
}

// ActivePal returns the locally remembered active pal id, "" when unset.
func (s *PalService) ActivePal(ctx context.Context) (string, error) {
	if s.State == nil {
		return "", nil
	}
	return s.State.Get(ctx, repository.StateActivePal)
}

func (s *PalService) SetActivePal(ctx context.Context, palID string) error {
	if s.State == nil {
		return nil
	}
	if palID == "" {
		return s.State.Delete(ctx, repository.StateActivePal)
	}
	return s.State.Set(ctx, repository.StateActivePal, palID)
}

func (s *PalService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
