package epg

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Fetcher is the HTTP fetch capability injected into every source adapter.
// It performs a single GET and never retries; the caller decides what a
// non-2xx status means.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) (int, []byte, error)
}

// HTTPFetcher fetches over a shared http.Client with optional custom
// request headers.
type HTTPFetcher struct {
	httpClient *http.Client
	headers    map[string]string
}

func NewHTTPFetcher(httpClient *http.Client, headers map[string]string) *HTTPFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPFetcher{
		httpClient: httpClient,
		headers:    headers,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, params url.Values) (int, []byte, error) {
	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}

	// Merge query parameters
	if len(params) > 0 {
		query := req.URL.Query()
		for k, vs := range params {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
		req.URL.RawQuery = query.Encode()
	}

	// Set custom request headers
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	// Execute request
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// Fetched reports whether status means the upstream answered with a usable
// body.
func Fetched(status int) bool {
	return status >= 200 && status < 300
}
