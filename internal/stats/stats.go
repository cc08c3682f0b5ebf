// Package stats keeps lifetime quiz statistics in a key-value store.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pavelanni/moviequiz/internal/model"
	"github.com/pavelanni/moviequiz/internal/store"
)

// Storage keys.
const (
	keyGamesCount     = "games_count"
	keyBestGame       = "best_game"
	keyCorrectAnswers = "correct_answers"
	keyTotalQuestions = "total_questions"
	keyAccuracy       = "accuracy"
)

// Service records finished sessions.
type Service struct {
	kv  store.KV
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to date best records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(kv store.KV, opts ...Option) *Service {
	s := &Service{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store records one finished session and returns the updated statistics.
// All fields change in one transaction.
func (s *Service) Store(ctx context.Context, correct, total int) (model.Statistics, error) {
	var st model.Statistics
	err := s.kv.Update(ctx, func(tx store.Tx) error {
		var err error
		st, err = read(ctx, tx)
		if err != nil {
			return err
		}

		st.GamesCount++
		if st.BestGame.IsBetter(correct) {
			st.BestGame = model.GameRecord{Correct: correct, Total: total, Date: s.now()}
		}
		st.CorrectAnswers += correct
		st.TotalQuestions += total
		st.Accuracy = accuracy(st.CorrectAnswers, st.TotalQuestions)

		return write(ctx, tx, st)
	})
	if err != nil {
		return model.Statistics{}, fmt.Errorf("store statistics: %w", err)
	}
	slog.Debug("statistics stored",
		"correct", correct,
		"total", total,
		"games_count", st.GamesCount,
		"accuracy", st.Accuracy,
	)
	return st, nil
}

// Load returns the current statistics.
func (s *Service) Load(ctx context.Context) (model.Statistics, error) {
	var st model.Statistics
	err := s.kv.View(ctx, func(tx store.Tx) error {
		var err error
		st, err = read(ctx, tx)
		return err
	})
	if err != nil {
		return model.Statistics{}, fmt.Errorf("load statistics: %w", err)
	}
	return st, nil
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

func read(ctx context.Context, tx store.Tx) (model.Statistics, error) {
	var st model.Statistics
	var err error

	if st.GamesCount, err = getInt(ctx, tx, keyGamesCount); err != nil {
		return st, err
	}
	if st.CorrectAnswers, err = getInt(ctx, tx, keyCorrectAnswers); err != nil {
		return st, err
	}
	if st.TotalQuestions, err = getInt(ctx, tx, keyTotalQuestions); err != nil {
		return st, err
	}

	acc, ok, err := tx.Get(ctx, keyAccuracy)
	if err != nil {
		return st, err
	}
	if ok {
		if st.Accuracy, err = strconv.ParseFloat(acc, 64); err != nil {
			return st, fmt.Errorf("parse %s: %w", keyAccuracy, err)
		}
	}

	raw, ok, err := tx.Get(ctx, keyBestGame)
	if err != nil {
		return st, err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &st.BestGame); err != nil {
			slog.Warn("unreadable best game record, starting over", "error", err)
			st.BestGame = model.GameRecord{}
		}
	}
	return st, nil
}

func write(ctx context.Context, tx store.Tx, st model.Statistics) error {
	best, err := json.Marshal(st.BestGame)
	if err != nil {
		return fmt.Errorf("encode best game: %w", err)
	}
	pairs := []struct{ k, v string }{
		{keyGamesCount, strconv.Itoa(st.GamesCount)},
		{keyBestGame, string(best)},
		{keyCorrectAnswers, strconv.Itoa(st.CorrectAnswers)},
		{keyTotalQuestions, strconv.Itoa(st.TotalQuestions)},
		{keyAccuracy, strconv.FormatFloat(st.Accuracy, 'g', -1, 64)},
	}
	for _, p := range pairs {
		if err := tx.Set(ctx, p.k, p.v); err != nil {
			return fmt.Errorf("set %s: %w", p.k, err)
		}
	}
	return nil
}

func getInt(ctx context.Context, tx store.Tx, key string) (int, error) {
	v, ok, err := tx.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
