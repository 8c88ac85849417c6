package previews

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
)

// Loader fetches an image far enough to know how to display it.
type Loader interface {
	Load(ctx context.Context, asset Asset) (Asset, error)
}

// HTTPLoader downloads images and reads their dimensions.
type HTTPLoader struct {
	Client *http.Client
}

// NewHTTPLoader returns a loader. A zero timeout leaves each load bounded
// only by its context.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{Client: &http.Client{Timeout: max(timeout, 0)}}
}

func (l *HTTPLoader) Load(ctx context.Context, asset Asset) (Asset, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return asset, fmt.Errorf("build image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return asset, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return asset, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return asset, fmt.Errorf("decode image: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	asset.Width = cfg.Width
	asset.Height = cfg.Height
	asset.Fit = fitFor(cfg.Width, cfg.Height)
	return asset, nil
}
