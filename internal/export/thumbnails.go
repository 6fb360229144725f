package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
)

const (
	thumbnailSize    = 160
	thumbnailQuality = 80
	maxImageBytes    = 10 << 20
	thumbnailWorkers = 4
)

// Thumbnailer downloads product images and shrinks them to JPEG thumbnails.
type Thumbnailer struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewThumbnailer(httpClient *http.Client, logger *slog.Logger) *Thumbnailer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Thumbnailer{httpClient: httpClient, logger: logger.With("component", "thumbnailer")}
}

// Thumbnails returns a JPEG thumbnail per product ID for the featured image
// of each item. Products whose image cannot be loaded are left out.
func (t *Thumbnailer) Thumbnails(ctx context.Context, items []catalog.PrintItem) map[string][]byte {
	results := make([][]byte, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(thumbnailWorkers)
	for i, item := range items {
		image, ok := item.Product.FeaturedImage()
		if !ok {
			continue
		}
		g.Go(func() error {
			thumb, err := t.fetch(gctx, image.URL)
			if err != nil {
				t.logger.Warn("failed to load product image", "product_id", item.Product.ID, "error", err)
				return nil
			}
			results[i] = thumb
			return nil
		})
	}
	_ = g.Wait()

	thumbs := make(map[string][]byte, len(items))
	for i, thumb := range results {
		if thumb != nil {
			thumbs[items[i].Product.ID] = thumb
		}
	}
	return thumbs
}

func (t *Thumbnailer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read image: %w", readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close image response: %w", closeErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image request failed: status %d", resp.StatusCode)
	}

	return Thumbnail(body)
}

// Thumbnail fits raw image bytes into a square JPEG thumbnail.
func Thumbnail(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	fitted := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
