package sources_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"marquee/internal/services"
	"marquee/internal/sources"
)

func TestFetchSendsDefaultsAndParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/movies/603" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" || r.URL.Query().Get("language") != "de" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("missing default header")
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	client, err := sources.New("fanart", server.URL+"/v3/",
		sources.WithQueryParam("api_key", "key"),
		sources.WithHeader("X-Test", "yes"),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	raw, err := client.Fetch(context.Background(), "movies/603", url.Values{"language": {"de"}})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestFetchClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{"status_code":34}`, services.ErrNotFound},
		{"server error", http.StatusInternalServerError, `oops`, services.ErrExternalService},
		{"invalid json", http.StatusOK, `<html>`, services.ErrExternalService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			client, err := sources.New("tmdb", server.URL)
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			_, err = client.Fetch(context.Background(), "movie/1", nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want == services.ErrNotFound && !sources.IsNotFound(err) {
				t.Fatal("IsNotFound should report true")
			}
		})
	}
}

func TestFetchHonoursCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client, err := sources.New("tmdb", server.URL, sources.WithRateLimit(0.001))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Fetch(context.Background(), "a", nil); err != nil {
		t.Fatalf("first fetch should use the burst token: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Fetch(ctx, "b", nil); err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("expected rate limit wait to fail, got %v", err)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := sources.New("tmdb", "  "); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
