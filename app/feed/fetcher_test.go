package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetcherRun(t *testing.T) {
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>Test</title></channel></rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Feedloop/test")

	result, err := fetcher.Run(context.Background(), server.URL, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.NotModified {
		t.Error("Expected NotModified to be false for a 200 response")
	}
	if string(result.Body) != body {
		t.Errorf("Expected body %q, got %q", body, string(result.Body))
	}
	if result.ETag != `"v1"` {
		t.Errorf("Expected ETag %q, got %q", `"v1"`, result.ETag)
	}
	if result.LastModified != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Errorf("Expected Last-Modified to be captured, got %q", result.LastModified)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", result.StatusCode)
	}
}

func TestFetcherRunSendsConditionalHeaders(t *testing.T) {
	var gotETag, gotModified, gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotETag = r.Header.Get("If-None-Match")
		gotModified = r.Header.Get("If-Modified-Since")
		gotUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Feedloop/test")

	result, err := fetcher.Run(context.Background(), server.URL, `"v1"`, "Mon, 02 Jan 2006 15:04:05 GMT")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotETag != `"v1"` {
		t.Errorf("Expected If-None-Match %q, got %q", `"v1"`, gotETag)
	}
	if gotModified != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Errorf("Expected If-Modified-Since to be sent, got %q", gotModified)
	}
	if gotUserAgent != "Feedloop/test" {
		t.Errorf("Expected User-Agent %q, got %q", "Feedloop/test", gotUserAgent)
	}

	if !result.NotModified {
		t.Error("Expected NotModified to be true for a 304 response")
	}
	if len(result.Body) != 0 {
		t.Errorf("Expected empty body on 304, got %d bytes", len(result.Body))
	}
}

func TestFetcherRunOmitsConditionalHeadersWithoutValidators(t *testing.T) {
	var sawETag, sawModified bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawETag = r.Header["If-None-Match"]
		_, sawModified = r.Header["If-Modified-Since"]
		w.Write([]byte("<rss/>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Feedloop/test")

	if _, err := fetcher.Run(context.Background(), server.URL, "", ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if sawETag {
		t.Error("Expected no If-None-Match header without a stored ETag")
	}
	if sawModified {
		t.Error("Expected no If-Modified-Since header without a stored Last-Modified")
	}
}

func TestFetcherRunHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"too many requests", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			fetcher := NewFetcher(server.Client(), "Feedloop/test")

			_, err := fetcher.Run(context.Background(), server.URL, "", "")
			if err == nil {
				t.Fatal("Expected an error for non-2xx status")
			}

			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("Expected *HTTPError, got %T: %v", err, err)
			}
			if httpErr.StatusCode != tt.statusCode {
				t.Errorf("Expected status %d in error, got %d", tt.statusCode, httpErr.StatusCode)
			}
		})
	}
}

func TestFetcherRunConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewFetcher(&http.Client{}, "Feedloop/test")

	_, err := fetcher.Run(context.Background(), url, "", "")
	if err == nil {
		t.Fatal("Expected an error when the server is unreachable")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("Expected a connection error, not a timeout")
	}
}
