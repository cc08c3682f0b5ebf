package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pavelanni/moviequiz/internal/model"
)

type fakeLoader struct {
	movies []model.Movie
	err    error
}

func (l fakeLoader) LoadMovies(context.Context) ([]model.Movie, error) {
	return l.movies, l.err
}

type fakeImages struct {
	data []byte
	err  error
	urls []string
}

func (f *fakeImages) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.data, f.err
}

// seqRand returns its values in order.
type seqRand struct {
	values []int
	ns     []int
}

func (r *seqRand) IntN(n int) int {
	r.ns = append(r.ns, n)
	v := r.values[0]
	r.values = r.values[1:]
	return v
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

var testMovies = []model.Movie{
	{Title: "First", Rating: "9.2", ImageURL: "https://img.example/first._V1_UX128_.jpg"},
	{Title: "Second", Rating: "5.9", ImageURL: "https://img.example/second._V1_UX128_.jpg"},
}

func TestNewQuestion(t *testing.T) {
	tests := []struct {
		name      string
		rating    string
		threshold int
		want      bool
	}{
		{"above", "7.0", 6, true},
		{"below", "5.9", 6, false},
		{"equal", "6", 6, false},
		{"unparsable", "n/a", 5, false},
		{"empty", "", 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuestion(context.Background(), model.Movie{Rating: tt.rating}, tt.threshold, nil)
			if q.CorrectAnswer != tt.want {
				t.Errorf("rating %q threshold %d: expected %v, got %v", tt.rating, tt.threshold, tt.want, q.CorrectAnswer)
			}
		})
	}

	q := NewQuestion(context.Background(), model.Movie{Rating: "7.0"}, 6, []byte("img"))
	if q.Text != "Is this movie rated higher than 6?" {
		t.Errorf("unexpected question text %q", q.Text)
	}
	if string(q.Image) != "img" {
		t.Errorf("expected image to be kept, got %q", q.Image)
	}
}

func TestLoadDataAndNextQuestion(t *testing.T) {
	images := &fakeImages{data: []byte("poster")}
	rnd := &seqRand{values: []int{1, 2}}
	g := NewGenerator(fakeLoader{movies: testMovies}, images, rnd)

	events := make(chan Event, 1)
	deliver := func(e Event) { events <- e }

	g.LoadData(context.Background(), deliver)
	if e := waitEvent(t, events); e.Kind != EventDataLoaded {
		t.Fatalf("expected %s, got %s (%v)", EventDataLoaded, e.Kind, e.Err)
	}

	g.RequestNextQuestion(context.Background(), deliver)
	e := waitEvent(t, events)
	if e.Kind != EventQuestionReady {
		t.Fatalf("expected %s, got %s", EventQuestionReady, e.Kind)
	}

	// Second movie (5.9) against threshold 5+2.
	if e.Question.Text != "Is this movie rated higher than 7?" {
		t.Errorf("unexpected question text %q", e.Question.Text)
	}
	if e.Question.CorrectAnswer {
		t.Error("expected correct answer false for 5.9 > 7")
	}
	if string(e.Question.Image) != "poster" {
		t.Errorf("expected poster bytes, got %q", e.Question.Image)
	}
	if len(images.urls) != 1 || images.urls[0] != "https://img.example/second._V0_UX600_.jpg" {
		t.Errorf("expected resized poster URL, got %v", images.urls)
	}
	if len(rnd.ns) != 2 || rnd.ns[0] != len(testMovies) || rnd.ns[1] != MaxThreshold-MinThreshold+1 {
		t.Errorf("unexpected random ranges %v", rnd.ns)
	}
}

func TestThresholdRange(t *testing.T) {
	for v := range MaxThreshold - MinThreshold + 1 {
		g := NewGenerator(fakeLoader{}, nil, &seqRand{values: []int{0, v}})
		g.movies = testMovies[:1]

		q, ok := g.next(context.Background())
		if !ok {
			t.Fatal("expected a question")
		}
		want := NewQuestion(context.Background(), testMovies[0], MinThreshold+v, nil)
		if q.Text != want.Text {
			t.Errorf("value %d: expected %q, got %q", v, want.Text, q.Text)
		}
	}
}

func TestPosterFailureKeepsQuestion(t *testing.T) {
	images := &fakeImages{err: errors.New("404")}
	g := NewGenerator(fakeLoader{}, images, &seqRand{values: []int{0, 0}})
	g.movies = testMovies

	q, ok := g.next(context.Background())
	if !ok {
		t.Fatal("expected a question despite poster failure")
	}
	if len(q.Image) != 0 {
		t.Errorf("expected empty image, got %q", q.Image)
	}
	if !q.CorrectAnswer {
		t.Error("expected correct answer true for 9.2 > 5")
	}
}

func TestNextWithoutMovies(t *testing.T) {
	g := NewGenerator(fakeLoader{}, nil, nil)

	if _, ok := g.next(context.Background()); ok {
		t.Error("expected no question without movies")
	}
}

func TestLoadDataFailure(t *testing.T) {
	cause := errors.New("timeout")
	g := NewGenerator(fakeLoader{err: cause}, nil, nil)

	events := make(chan Event, 1)
	g.LoadData(context.Background(), func(e Event) { events <- e })

	e := waitEvent(t, events)
	if e.Kind != EventFailed {
		t.Fatalf("expected %s, got %s", EventFailed, e.Kind)
	}
	if !errors.Is(e.Err, ErrDataLoad) {
		t.Errorf("expected ErrDataLoad, got %v", e.Err)
	}
	if !errors.Is(e.Err, cause) {
		t.Errorf("expected cause to be wrapped, got %v", e.Err)
	}
}

func TestEventKindString(t *testing.T) {
	tests := map[EventKind]string{
		EventDataLoaded:    "data_loaded",
		EventQuestionReady: "question_ready",
		EventFailed:        "failed",
		EventKind(0):       "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
