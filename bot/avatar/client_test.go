package avatar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/avatarbot/core/config"
	"github.com/m3rciful/avatarbot/core/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(&coreconfig.Config{
		Logging: coreconfig.LoggingConfig{Level: "error"},
	})
	os.Exit(m.Run())
}

func TestClientURL(t *testing.T) {
	c := NewClient("https://api.example.com/9.x", "avataaars", 0)

	cases := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "default style gets legacy transparent flag",
			req:  Request{Style: "avataaars", Seed: "alice", Format: "png"},
			want: "https://api.example.com/9.x/avataaars/png?seed=alice&transparent=true",
		},
		{
			name: "default style flag is case-insensitive",
			req:  Request{Style: "AvAtAaArS", Seed: "alice", Format: "png"},
			want: "https://api.example.com/9.x/AvAtAaArS/png?seed=alice&transparent=true",
		},
		{
			name: "solid color wins over transparent flag",
			req:  Request{Style: "avataaars", Seed: "alice", Format: "png", BackgroundColor: "FF0000"},
			want: "https://api.example.com/9.x/avataaars/png?seed=alice&backgroundColor=FF0000",
		},
		{
			name: "non-default style with color",
			req:  Request{Style: "bottts", Seed: "bob", Format: "svg", BackgroundColor: "FF0000"},
			want: "https://api.example.com/9.x/bottts/svg?seed=bob&backgroundColor=FF0000",
		},
		{
			name: "non-default style without color has no extra params",
			req:  Request{Style: "bottts", Seed: "bob", Format: "svg"},
			want: "https://api.example.com/9.x/bottts/svg?seed=bob",
		},
		{
			name: "seed is url-encoded",
			req:  Request{Style: "bottts", Seed: "a b&c", Format: "png"},
			want: "https://api.example.com/9.x/bottts/png?seed=a+b%26c",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.URL(tc.req); got != tc.want {
				t.Fatalf("URL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClientFetchReturnsBody(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "avataaars", time.Second)
	body, err := c.Fetch(context.Background(), Request{Style: "bottts", Seed: "bob", Format: "svg"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "image-bytes" {
		t.Fatalf("body = %q", body)
	}
	if gotPath != "/bottts/svg" || gotQuery != "seed=bob" {
		t.Fatalf("request = %s?%s", gotPath, gotQuery)
	}
}

func TestClientFetchSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "avataaars", time.Second)
	_, err := c.Fetch(context.Background(), Request{Style: "bottts", Seed: "x", Format: "png"})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want 503", statusErr.Code)
	}
}

func TestClientFetchDoesNotRetry(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "avataaars", time.Second)
	if _, err := c.Fetch(context.Background(), Request{Style: "bottts", Seed: "x", Format: "png"}); err == nil {
		t.Fatal("expected error")
	}
	if hits != 1 {
		t.Fatalf("server hit %d times, want exactly 1", hits)
	}
}

func TestClientFetchHonorsContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(srv.URL, "avataaars", time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, Request{Style: "bottts", Seed: "x", Format: "png"})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected cancellation error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch did not return after cancel")
	}
}
