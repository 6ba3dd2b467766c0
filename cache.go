package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// cachedResponse holds the response fields worth replaying, in a simple
// JSON format on disk.
type cachedResponse struct {
	Status     string              `json:"status"`
	StatusCode int                 `json:"status_code"`
	Proto      string              `json:"proto"`
	Header     map[string][]string `json:"header"`
	Body       []byte              `json:"body"`
}

// CachingRoundTripper implements http.RoundTripper, replaying stored
// responses keyed on method, URL and request body. Useful for development
// runs against the rate-limited Enedis endpoints.
type CachingRoundTripper struct {
	// UnderlyingTransport is used on a cache miss.
	// If nil, http.DefaultTransport is used.
	UnderlyingTransport http.RoundTripper

	// CacheDir is the directory where response files are stored.
	CacheDir string
}

func (c *CachingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	tr := c.UnderlyingTransport
	if tr == nil {
		tr = http.DefaultTransport
	}

	// The body is needed twice: once for the cache key, once for the
	// actual request.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	path := c.cacheFilePath(cacheKey(req.Method, req.URL.String(), bodyBytes))

	if data, err := os.ReadFile(path); err == nil {
		var cr cachedResponse
		if err := json.Unmarshal(data, &cr); err != nil {
			return nil, fmt.Errorf("corrupt cache entry %s: %w", path, err)
		}
		return buildHTTPResponse(req, cr), nil
	}

	resp, err := tr.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	cr := cachedResponse{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Proto:      resp.Proto,
		Header:     resp.Header.Clone(),
		Body:       respBody,
	}
	data, err := json.MarshalIndent(&cr, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, err
	}

	return buildHTTPResponse(req, cr), nil
}

// cacheKey builds a SHA-256 hash string from method, url, and request body.
// Headers are deliberately ignored.
func cacheKey(method, url string, body []byte) string {
	hash := sha256.New()
	hash.Write([]byte(method))
	hash.Write([]byte(url))
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}

func (c *CachingRoundTripper) cacheFilePath(key string) string {
	return filepath.Join(c.CacheDir, key+".json")
}

// buildHTTPResponse constructs a fresh *http.Response with a readable body
// from cached data.
func buildHTTPResponse(req *http.Request, cr cachedResponse) *http.Response {
	return &http.Response{
		Status:        cr.Status,
		StatusCode:    cr.StatusCode,
		Proto:         cr.Proto,
		Header:        cr.Header,
		Body:          io.NopCloser(bytes.NewReader(cr.Body)),
		ContentLength: int64(len(cr.Body)),
		Request:       req,
	}
}
