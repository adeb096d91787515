package service

import (
	"context"
	"fmt"

	"github.com/c-hri-sw-u/PalPal/internal/pal"
	"github.com/c-hri-sw-u/PalPal/internal/supabase"
)

// FeedService lists the shared activity feed, newest first.
type FeedService struct {
	Records RecordStore
}

func (s *FeedService) List(ctx context.Context) ([]pal.Post, error) {
	var posts []pal.Post
	if err := s.Records.Select(ctx, supabase.TablePosts, nil, "created_at.desc", &posts); err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	return posts, nil
}
