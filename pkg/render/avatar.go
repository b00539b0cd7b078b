package render

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	_ "golang.org/x/image/webp"
)

// maxAvatarBytes caps avatar downloads
const maxAvatarBytes = 8 << 20

// AvatarFetcher downloads and decodes avatars
type AvatarFetcher struct {
	client *retryablehttp.Client
}

// NewAvatarFetcher creates a fetcher with a short retry budget
func NewAvatarFetcher() *AvatarFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &AvatarFetcher{client: client}
}

// Fetch downloads an image. Callers treat failures as decorative and draw
// a placeholder instead.
func (f *AvatarFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("empty avatar url")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch avatar: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}
	return img, nil
}
