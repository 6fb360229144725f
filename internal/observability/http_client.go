package observability

import (
	"net/http"
	"time"

	sentryhttpclient "github.com/getsentry/sentry-go/httpclient"
)

// WrapRoundTripper traces outgoing requests and propagates trace headers to
// the given hosts only.
func WrapRoundTripper(base http.RoundTripper, propagationTargets ...string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return sentryhttpclient.NewSentryRoundTripper(
		base,
		sentryhttpclient.WithTracePropagationTargets(propagationTargets),
	)
}

func NewHTTPClient(timeout time.Duration, propagationTargets ...string) *http.Client {
	client := &http.Client{
		Transport: WrapRoundTripper(http.DefaultTransport, propagationTargets...),
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return client
}
