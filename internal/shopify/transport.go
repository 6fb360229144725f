package shopify

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// storefrontTransport turns transport failures into ErrUnreachable and
// non-2xx responses into *APIError before the graphql client decodes them.
type storefrontTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func newStorefrontHTTPClient(httpClient *http.Client, logger *slog.Logger) *http.Client {
	classifying := *httpClient
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	classifying.Transport = &storefrontTransport{base: base, logger: logger}
	return &classifying
}

func (t *storefrontTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength+1))
		if err := resp.Body.Close(); err != nil {
			t.logger.Warn("failed to close response body", "status", resp.StatusCode, "error", err)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBodyLength)}
	}

	resp.Body = &unreachableBody{ReadCloser: resp.Body}
	return resp, nil
}

// unreachableBody marks a connection dropped mid-body as unreachable.
type unreachableBody struct {
	io.ReadCloser
}

func (b *unreachableBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return n, err
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
