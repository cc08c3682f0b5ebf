package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/moviequiz/internal/handler"
	"github.com/pavelanni/moviequiz/internal/model"
	"github.com/pavelanni/moviequiz/internal/stats"
	"github.com/pavelanni/moviequiz/internal/store"
)

// seedDB records the given sessions in a fresh SQLite file.
func seedDB(t *testing.T, sessions ...[2]int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats.db")
	kv, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer kv.Close()

	svc := stats.New(kv)
	for _, s := range sessions {
		if _, err := svc.Store(context.Background(), s[0], s[1]); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("execute %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestExportJSON(t *testing.T) {
	db := seedDB(t, [2]int{5, 10}, [2]int{3, 10})

	out := execute(t, "export", "--db", db, "--log-level", "error")

	var got model.StatsExport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if got.Store != store.BackendSQLite {
		t.Errorf("expected store %q, got %q", store.BackendSQLite, got.Store)
	}
	if got.Statistics.GamesCount != 2 {
		t.Errorf("expected 2 games, got %d", got.Statistics.GamesCount)
	}
	if got.Statistics.Accuracy != 40 {
		t.Errorf("expected accuracy 40, got %v", got.Statistics.Accuracy)
	}
	if got.Statistics.BestGame.Correct != 5 {
		t.Errorf("expected best 5, got %d", got.Statistics.BestGame.Correct)
	}
}

func TestExportYAMLToFile(t *testing.T) {
	db := seedDB(t, [2]int{7, 10})
	outPath := filepath.Join(t.TempDir(), "stats.yaml")

	execute(t, "export", "--db", db, "--format", "yaml", "--output", outPath, "--log-level", "error")

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got model.StatsExport
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, data)
	}
	if got.Statistics.GamesCount != 1 || got.Statistics.CorrectAnswers != 7 {
		t.Errorf("unexpected statistics %+v", got.Statistics)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	db := seedDB(t)

	root := rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"export", "--db", db, "--format", "xml", "--log-level", "error"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestStatsCommand(t *testing.T) {
	db := seedDB(t, [2]int{5, 10}, [2]int{3, 10})

	out := execute(t, "stats", "--db", db, "--log-level", "error")

	for _, want := range []string{"Statistics", "2 quizzes played", "Average accuracy: 40.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestStatsCommandRussian(t *testing.T) {
	db := seedDB(t)

	out := execute(t, "stats", "--db", db, "--lang", "ru", "--log-level", "error")

	if !strings.Contains(out, "Статистика") {
		t.Errorf("expected Russian title, got:\n%s", out)
	}
}

func TestShutdownWaitsForLoop(t *testing.T) {
	db := filepath.Join(t.TempDir(), "stats.db")
	v := viper.New()
	v.Set("store", store.BackendSQLite)
	v.Set("db", db)

	g, err := newGame(context.Background(), v, handler.NewSurface())
	if err != nil {
		t.Fatalf("newGame: %v", err)
	}

	started := make(chan struct{})
	var storeErr error
	g.loop.Dispatch(func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		_, storeErr = g.stats.Store(context.Background(), 6, 10)
	})
	<-started

	g.shutdown()
	if storeErr != nil {
		t.Fatalf("expected session end to finish before the store closed, got %v", storeErr)
	}

	kv, err := store.New(db)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer kv.Close()
	st, err := stats.New(kv).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.GamesCount != 1 || st.CorrectAnswers != 6 {
		t.Errorf("expected the session saved, got %+v", st)
	}
}
