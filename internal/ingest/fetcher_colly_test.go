package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testCollyFetcher() *CollyFetcher {
	return NewCollyFetcher(FetchConfig{
		TimeoutSeconds: 5,
		MaxRetries:     1,
		RateLimitRPS:   100,
		UserAgent:      "test-agent",
	})
}

// A host that refuses every connection exhausts the retry budget. The
// nested retry unwinds through the error callback once per attempt, and
// Fetch must come back with an error instead of corrupting its completion
// state.
func TestCollyFetcherRetryExhaustion(t *testing.T) {
	f := testCollyFetcher()

	doc, err := f.Fetch(context.Background(), "http://127.0.0.1:1/projects/alpha-bot")
	if err == nil {
		t.Fatal("expected error for unreachable host, got nil")
	}
	if doc != nil {
		t.Fatalf("expected nil document, got %+v", doc)
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
}

// A server that always fails drives the same exhaustion path through a
// real HTTP response.
func TestCollyFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := testCollyFetcher()

	_, err := f.Fetch(context.Background(), srv.URL+"/projects/alpha-bot")
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
}

// httptest servers always carry a port, so this doubles as coverage for
// the allowed-domain check matching on hostname rather than host:port.
func TestCollyFetcherFetchesDocument(t *testing.T) {
	const page = `<html><body><h1>Alpha Bot</h1></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, page)
	}))
	defer srv.Close()

	f := testCollyFetcher()

	doc, err := f.Fetch(context.Background(), srv.URL+"/projects/alpha-bot")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if doc.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", doc.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(doc.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !strings.Contains(string(body), "Alpha Bot") {
		t.Errorf("body does not contain page content: %q", body)
	}
}
