package main

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCachingRoundTripper(t *testing.T) {
	calls := 0
	underlying := &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			calls++
			return textResponse(http.StatusOK, nil, `{"n": 1}`), nil
		},
	}
	rt := &CachingRoundTripper{UnderlyingTransport: underlying, CacheDir: t.TempDir()}

	get := func(body string) string {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req, err := http.NewRequest(http.MethodPost, "http://example.com/data", r)
		require.NoError(t, err)

		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(b)
	}

	first := get("a=1")
	require.Equal(t, 1, calls)

	// Identical request replays from disk.
	second := get("a=1")
	require.Equal(t, 1, calls)
	require.Equal(t, first, second)

	// A different body is a different cache key.
	get("a=2")
	require.Equal(t, 2, calls)
}
