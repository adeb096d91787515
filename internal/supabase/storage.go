package supabase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// Bucket names are fixed platform identifiers.
const (
	BucketUserAvatars = "user-avatars"
	BucketPalAvatars  = "pal-avatars"
	BucketPalFullbody = "pal-fullbody"
	BucketPostImages  = "post-images"
)

// ObjectPath builds a unique object path for an upload, scoped to the
// owning user.
func ObjectPath(bucket, userID, fileName string) string {
	return fmt.Sprintf("%s/%s_%d_%s", userID, bucket, time.Now().UnixMilli(), fileName)
}

// Upload stores bytes at path in the bucket, overwriting any existing
// object, and returns the path.
func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte) (string, error) {
	u := c.baseURL + "/storage/v1/object/" + bucket + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("x-upsert", "true")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", readError(resp)
	}
	return path, nil
}

// PublicURL returns the public URL for an object. No network call; public
// buckets serve objects at a fixed path.
func (c *Client) PublicURL(bucket, path string) string {
	return c.baseURL + "/storage/v1/object/public/" + bucket + "/" + path
}

// Remove deletes an object. Returns false (with the error) on failure.
func (c *Client) Remove(ctx context.Context, bucket, path string) (bool, error) {
	u := c.baseURL + "/storage/v1/object/" + bucket + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return false, readError(resp)
	}
	return true, nil
}
