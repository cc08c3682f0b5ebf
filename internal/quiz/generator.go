package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/pavelanni/moviequiz/internal/i18n"
	"github.com/pavelanni/moviequiz/internal/model"
)

// Threshold bounds, inclusive.
const (
	MinThreshold = 5
	MaxThreshold = 9
)

var (
	// ErrDataLoad wraps catalog fetch and decode failures.
	ErrDataLoad = errors.New("data load failed")
	// ErrImageFetch wraps poster download failures. It never reaches the player.
	ErrImageFetch = errors.New("image fetch failed")
)

// EventKind tags a generator result.
type EventKind int

const (
	EventDataLoaded EventKind = iota + 1
	EventQuestionReady
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventDataLoaded:
		return "data_loaded"
	case EventQuestionReady:
		return "question_ready"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a generator result. Question is set for EventQuestionReady, Err for EventFailed.
type Event struct {
	Kind     EventKind
	Question model.Question
	Err      error
}

// MovieLoader provides the movie list.
type MovieLoader interface {
	LoadMovies(ctx context.Context) ([]model.Movie, error)
}

// ImageFetcher downloads poster bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Rand is the subset of math/rand/v2 the generator needs.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Generator builds questions from the loaded catalog. Work runs on its own
// goroutines; results go back through the deliver function given to each call.
type Generator struct {
	loader MovieLoader
	images ImageFetcher
	rnd    Rand

	mu     sync.Mutex
	movies []model.Movie
}

// NewGenerator creates a generator. A nil rnd uses the math/rand/v2 global source.
func NewGenerator(loader MovieLoader, images ImageFetcher, rnd Rand) *Generator {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Generator{loader: loader, images: images, rnd: rnd}
}

// LoadData fetches the catalog and delivers EventDataLoaded or EventFailed.
func (g *Generator) LoadData(ctx context.Context, deliver func(Event)) {
	go func() {
		movies, err := g.loader.LoadMovies(ctx)
		if err != nil {
			deliver(Event{Kind: EventFailed, Err: fmt.Errorf("%w: %w", ErrDataLoad, err)})
			return
		}
		g.mu.Lock()
		g.movies = movies
		g.mu.Unlock()

		slog.Info("movies loaded", "count", len(movies))
		deliver(Event{Kind: EventDataLoaded})
	}()
}

// RequestNextQuestion delivers one EventQuestionReady. Nothing is delivered
// when no movies are loaded.
func (g *Generator) RequestNextQuestion(ctx context.Context, deliver func(Event)) {
	go func() {
		q, ok := g.next(ctx)
		if !ok {
			return
		}
		deliver(Event{Kind: EventQuestionReady, Question: q})
	}()
}

func (g *Generator) next(ctx context.Context) (model.Question, bool) {
	g.mu.Lock()
	if len(g.movies) == 0 {
		g.mu.Unlock()
		slog.Warn("no movies loaded, question not generated")
		return model.Question{}, false
	}
	movie := g.movies[g.rnd.IntN(len(g.movies))]
	threshold := MinThreshold + g.rnd.IntN(MaxThreshold-MinThreshold+1)
	g.mu.Unlock()

	return NewQuestion(ctx, movie, threshold, g.poster(ctx, movie)), true
}

// poster returns an empty image on failure so the round still goes ahead.
func (g *Generator) poster(ctx context.Context, movie model.Movie) []byte {
	if g.images == nil || movie.ImageURL == "" {
		return nil
	}
	data, err := g.images.Fetch(ctx, movie.ResizedImageURL())
	if err != nil {
		slog.Warn("poster unavailable",
			"title", movie.Title,
			"error", fmt.Errorf("%w: %w", ErrImageFetch, err),
		)
		return nil
	}
	return data
}

// NewQuestion asks whether movie is rated above threshold. Unparsable ratings count as 0.
func NewQuestion(ctx context.Context, movie model.Movie, threshold int, image []byte) model.Question {
	rating, err := strconv.ParseFloat(movie.Rating, 64)
	if err != nil {
		slog.Debug("unparsable rating", "title", movie.Title, "rating", movie.Rating)
		rating = 0
	}
	return model.Question{
		Image:         image,
		Text:          i18n.Td(ctx, "QuestionPrompt", map[string]any{"Threshold": threshold}),
		CorrectAnswer: rating > float64(threshold),
	}
}
