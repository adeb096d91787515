package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c-hri-sw-u/PalPal/internal/onboarding"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

type fakeObjectStore struct {
	uploads   []string // "bucket/path"
	uploadErr error
}

func (f *fakeObjectStore) Upload(_ context.Context, bucket, path string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if len(data) == 0 {
		return "", errors.New("empty upload")
	}
	f.uploads = append(f.uploads, bucket+"/"+path)
	return path, nil
}

func (f *fakeObjectStore) PublicURL(bucket, path string) string {
	return "https://cdn/" + bucket + "/" + path
}

func photoFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("jpeg-bytes"), 0o600))
	return p
}

func TestFinalizeUploadsAndCreates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	objects := &fakeObjectStore{}
	records := &fakeRecords{}
	svc := &OnboardingService{
		Photos: &PhotoService{Store: objects},
		Pals:   &PalService{Records: records},
	}

	sub := onboarding.Submission{
		Name:        "Teddy",
		AvatarPhoto: photoFile(t, dir, "avatar.jpg"),
		BodyPhotos:  [4]string{photoFile(t, dir, "front.jpg"), "", photoFile(t, dir, "left.jpg"), ""},
		Profile:     pal.DefaultProfile("Teddy"),
	}

	created, err := svc.Finalize(context.Background(), "u1", sub)
	require.NoError(t, err)
	require.Equal(t, "Teddy", created.Name)
	require.True(t, strings.HasPrefix(created.AvatarURL, "https://cdn/pal-avatars/"))

	// front and left uploaded, skipped views stay empty
	require.Len(t, objects.uploads, 3)
	require.True(t, strings.HasPrefix(created.FullBodyPhotos[0], "https://cdn/pal-fullbody/"))
	require.Empty(t, created.FullBodyPhotos[1])
	require.True(t, strings.HasPrefix(created.FullBodyPhotos[2], "https://cdn/pal-fullbody/"))
	require.Empty(t, created.FullBodyPhotos[3])

	require.Len(t, records.inserts, 1)
}

func TestFinalizeWithoutAvatar(t *testing.T) {
	t.Parallel()

	objects := &fakeObjectStore{}
	records := &fakeRecords{}
	svc := &OnboardingService{
		Photos: &PhotoService{Store: objects},
		Pals:   &PalService{Records: records},
	}

	sub := onboarding.Submission{Name: "Teddy", Profile: pal.DefaultProfile("Teddy")}
	created, err := svc.Finalize(context.Background(), "u1", sub)
	require.NoError(t, err)
	require.Empty(t, created.AvatarURL)
	require.Empty(t, objects.uploads)
}

func TestFinalizeUploadFailureStopsBeforeInsert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	objects := &fakeObjectStore{uploadErr: errors.New("storage down")}
	records := &fakeRecords{}
	svc := &OnboardingService{
		Photos: &PhotoService{Store: objects},
		Pals:   &PalService{Records: records},
	}

	sub := onboarding.Submission{
		Name:        "Teddy",
		AvatarPhoto: photoFile(t, dir, "avatar.jpg"),
		Profile:     pal.DefaultProfile("Teddy"),
	}
	_, err := svc.Finalize(context.Background(), "u1", sub)
	require.Error(t, err)
	require.Empty(t, records.inserts)
}

func TestUploadBodyPhotosMissingFile(t *testing.T) {
	t.Parallel()

	svc := &PhotoService{Store: &fakeObjectStore{}}
	_, err := svc.UploadBodyPhotos(context.Background(), "u1", [4]string{"/nope/missing.jpg", "", "", ""})
	require.Error(t, err)
}
