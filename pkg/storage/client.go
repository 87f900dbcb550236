// Package storage uploads product images to the hosted object store and
// returns their public URLs. Bucket layout and URL scheme belong to the
// store, not to this service.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

type Client interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

func NewClient(baseURL, apiKey, bucket string) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *httpClient) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "3600")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("object store returned status %d", resp.StatusCode)
	}

	return c.PublicURL(path), nil
}

func (c *httpClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
}
