package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const top250 = `{
	"items": [
		{"id": "tt0111161", "rank": "1", "title": "The Shawshank Redemption", "imDbRating": "9.2",
		 "image": "https://m.media-amazon.com/images/M/MV5B._V1_Ratio0.6716_AL_.jpg"},
		{"id": "tt0068646", "rank": "2", "title": "The Godfather", "imDbRating": "9.1",
		 "image": "https://m.media-amazon.com/images/M/MV5C._V1_Ratio0.7015_AL_.jpg"}
	],
	"errorMessage": ""
}`

func newCatalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

func TestClientFetch(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, "poster-bytes")

	data, err := NewClient(time.Second).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "poster-bytes" {
		t.Errorf("expected body 'poster-bytes', got %q", data)
	}
}

func TestClientFetchBadStatus(t *testing.T) {
	srv := newCatalogServer(t, http.StatusNotFound, "nope")

	_, err := NewClient(time.Second).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestClientFetchCanceled(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, "late")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClient(time.Second).Fetch(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoadMovies(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, top250)
	loader := NewLoader(NewClient(time.Second), srv.URL)

	movies, err := loader.LoadMovies(context.Background())
	if err != nil {
		t.Fatalf("LoadMovies: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	if movies[1].Title != "The Godfather" {
		t.Errorf("expected title 'The Godfather', got %q", movies[1].Title)
	}
	if movies[0].Rating != "9.2" {
		t.Errorf("expected rating '9.2', got %q", movies[0].Rating)
	}
	want := "https://m.media-amazon.com/images/M/MV5B._V0_UX600_.jpg"
	if got := movies[0].ResizedImageURL(); got != want {
		t.Errorf("expected resized URL %q, got %q", want, got)
	}
}

func TestLoadMoviesErrors(t *testing.T) {
	netErr := errors.New("network is unreachable")

	tests := []struct {
		name    string
		fetcher Fetcher
		check   func(error) bool
	}{
		{
			name: "fetch failure is passed through",
			fetcher: fetcherFunc(func(context.Context, string) ([]byte, error) {
				return nil, netErr
			}),
			check: func(err error) bool { return errors.Is(err, netErr) },
		},
		{
			name: "invalid JSON",
			fetcher: fetcherFunc(func(context.Context, string) ([]byte, error) {
				return []byte(`{"items": [`), nil
			}),
			check: func(err error) bool {
				var syntaxErr *json.SyntaxError
				return errors.As(err, &syntaxErr)
			},
		},
		{
			name: "catalog error message",
			fetcher: fetcherFunc(func(context.Context, string) ([]byte, error) {
				return []byte(`{"items": [], "errorMessage": "Invalid API Key"}`), nil
			}),
			check: func(err error) bool { return errors.Is(err, ErrCatalog) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.fetcher, "http://catalog.invalid").LoadMovies(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewLoaderDefaultURL(t *testing.T) {
	var requested string
	f := fetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		requested = url
		return []byte(`{"items": []}`), nil
	})
	if _, err := NewLoader(f, "").LoadMovies(context.Background()); err != nil {
		t.Fatalf("LoadMovies: %v", err)
	}
	if requested != DefaultURL {
		t.Errorf("expected %q, got %q", DefaultURL, requested)
	}
}
