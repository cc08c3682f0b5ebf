package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pavelanni/moviequiz/internal/model"
)

// ErrCatalog is returned when the catalog reports an error in its payload.
var ErrCatalog = errors.New("catalog error")

// Fetcher downloads raw bytes for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader fetches and decodes the movie catalog.
type Loader struct {
	fetcher Fetcher
	url     string
}

// NewLoader creates a loader for the catalog at url.
func NewLoader(f Fetcher, url string) *Loader {
	if url == "" {
		url = DefaultURL
	}
	return &Loader{fetcher: f, url: url}
}

// LoadMovies fetches the catalog once. Errors are not retried.
func (l *Loader) LoadMovies(ctx context.Context) ([]model.Movie, error) {
	data, err := l.fetcher.Fetch(ctx, l.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	var movies model.MostPopularMovies
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if movies.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", ErrCatalog, movies.ErrorMessage)
	}
	return movies.Items, nil
}
