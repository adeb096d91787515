package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/c-hri-sw-u/PalPal/internal/supabase"
)

// ObjectStore is the storage surface photo uploads depend on.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte) (string, error)
	PublicURL(bucket, path string) string
}

// PhotoService uploads captured photos and resolves their public URLs.
// Upload failures are surfaced to the caller; nothing is retried.
type PhotoService struct {
	Store  ObjectStore
	Logger *zap.Logger
}

// UploadAvatar reads the cropped avatar from disk and uploads it, returning
// the public URL.
func (s *PhotoService) UploadAvatar(ctx context.Context, userID, filePath string) (string, error) {
	return s.upload(ctx, supabase.BucketPalAvatars, userID, filePath)
}

// UploadBodyPhotos uploads the captured body views in order. Empty slots
// (skipped views) stay empty.
func (s *PhotoService) UploadBodyPhotos(ctx context.Context, userID string, photos [4]string) ([4]string, error) {
	var urls [4]string
	for i, p := range photos {
		if p == "" {
			continue
		}
		u, err := s.upload(ctx, supabase.BucketPalFullbody, userID, p)
		if err != nil {
			return [4]string{}, err
		}
		urls[i] = u
	}
	return urls, nil
}

func (s *PhotoService) upload(ctx context.Context, bucket, userID, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read photo %s: %w", filePath, err)
	}
	path := supabase.ObjectPath(bucket, userID, filepath.Base(filePath))
	stored, err := s.Store.Upload(ctx, bucket, path, data)
	if err != nil {
		s.logger().Warn("photo upload failed", zap.String("bucket", bucket), zap.Error(err))
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return s.Store.PublicURL(bucket, stored), nil
}

func (s *PhotoService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
