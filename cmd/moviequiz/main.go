package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/moviequiz/internal/catalog"
	"github.com/pavelanni/moviequiz/internal/handler"
	appI18n "github.com/pavelanni/moviequiz/internal/i18n"
	"github.com/pavelanni/moviequiz/internal/model"
	"github.com/pavelanni/moviequiz/internal/quiz"
	"github.com/pavelanni/moviequiz/internal/stats"
	"github.com/pavelanni/moviequiz/internal/store"
	"github.com/pavelanni/moviequiz/internal/tui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "moviequiz",
		Short: "Guess whether a movie is rated higher than a random threshold",
	}

	play := playCmd()
	root.AddCommand(play, serveCmd(), statsCmd(), exportCmd())

	// Make "play" the default when no subcommand is given.
	root.RunE = play.RunE
	root.Flags().AddFlagSet(play.Flags())

	return root
}

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE:  runPlay,
	}
	f := cmd.Flags()
	addQuizFlags(f)
	addStoreFlags(f)
	addLogFlags(f, "moviequiz.log")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quiz as a web page and an HTTP/JSON API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /quiz)")
	addQuizFlags(f)
	addStoreFlags(f)
	addLogFlags(f, "")
	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print lifetime statistics",
		RunE:  runStats,
	}
	f := cmd.Flags()
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	addStoreFlags(f)
	addLogFlags(f, "")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export lifetime statistics as JSON or YAML",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.StringP("format", "f", "json", "Output format (json, yaml)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addStoreFlags(f)
	addLogFlags(f, "")
	return cmd
}

func addQuizFlags(f *pflag.FlagSet) {
	f.String("catalog-url", catalog.DefaultURL, "Movie catalog URL")
	f.Duration("http-timeout", 10*time.Second, "Timeout for catalog and poster requests")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
}

func addStoreFlags(f *pflag.FlagSet) {
	f.String("store", store.BackendSQLite, "Statistics store (sqlite, memory, postgres, redis)")
	f.String("db", "moviequiz.db", "SQLite database path")
	f.String("postgres-dsn", "", "PostgreSQL connection string")
	f.String("redis-addr", "", "Redis address or redis:// URL")
}

func addLogFlags(f *pflag.FlagSet, defaultFile string) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	f.String("log-file", defaultFile, "Write logs to this file instead of stderr")
}

// setupLogging installs the default logger. The returned function closes the
// log file, if any.
func setupLogging(cmd *cobra.Command) (func(), error) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeLog := func() {}
	if path := v.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeLog = func() { _ = f.Close() }
	}

	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(out, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(out, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
	return closeLog, nil
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("MOVIEQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("moviequiz")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/moviequiz")
	v.AddConfigPath("/etc/moviequiz")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func storeConfig(v *viper.Viper) store.Config {
	return store.Config{
		Backend:     v.GetString("store"),
		DBPath:      v.GetString("db"),
		PostgresDSN: v.GetString("postgres-dsn"),
		RedisAddr:   v.GetString("redis-addr"),
	}
}

func quizConfig(v *viper.Viper) model.QuizConfig {
	return model.QuizConfig{
		CatalogURL:  v.GetString("catalog-url"),
		HTTPTimeout: v.GetDuration("http-timeout"),
		Lang:        v.GetString("lang"),
	}
}

// game is the wiring shared by play and serve.
type game struct {
	ctrl   *quiz.Controller
	stats  *stats.Service
	kv     store.KV
	loop   *quiz.Loop
	cancel context.CancelFunc
}

func newGame(ctx context.Context, v *viper.Viper, surface quiz.Surface) (*game, error) {
	cfg := quizConfig(v)

	kv, err := store.Open(ctx, storeConfig(v))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	statsSvc := stats.New(kv)

	client := catalog.NewClient(cfg.HTTPTimeout)
	gen := quiz.NewGenerator(catalog.NewLoader(client, cfg.CatalogURL), client, nil)

	ctx, cancel := context.WithCancel(ctx)
	loop := quiz.NewLoop()
	go loop.Run(ctx)

	slog.Info("quiz ready",
		"catalog_url", cfg.CatalogURL,
		"http_timeout", cfg.HTTPTimeout,
		"lang", cfg.Lang,
		"store", v.GetString("store"),
	)
	return &game{
		ctrl:   quiz.NewController(ctx, loop, surface, gen, statsSvc),
		stats:  statsSvc,
		kv:     kv,
		loop:   loop,
		cancel: cancel,
	}, nil
}

// shutdown stops the loop, lets a running session end finish, then closes the store.
func (g *game) shutdown() {
	g.cancel()
	<-g.loop.Done()
	if err := g.kv.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
}

func runPlay(cmd *cobra.Command, _ []string) error {
	closeLog, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	defer closeLog()
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	ctx := appI18n.WithLang(context.Background(), lang)

	surface := tui.NewSurface()
	g, err := newGame(ctx, v, surface)
	if err != nil {
		return err
	}
	defer g.shutdown()

	p := tea.NewProgram(tui.NewModel(ctx, g.ctrl), tea.WithAltScreen())
	surface.Attach(p.Send)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	closeLog, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	defer closeLog()
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	surface := handler.NewSurface()
	g, err := newGame(appI18n.WithLang(ctx, lang), v, surface)
	if err != nil {
		return err
	}
	defer g.shutdown()

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	h := handler.New(g.ctrl, surface, g.stats, basePath)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, h.Routes)
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "lang", lang, "base_path", basePath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runStats(cmd *cobra.Command, _ []string) error {
	closeLog, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	defer closeLog()
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	ctx := appI18n.WithLang(cmd.Context(), lang)

	kv, err := store.Open(ctx, storeConfig(v))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	st, err := stats.New(kv).Load(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, appI18n.T(ctx, "StatsTitle"))
	fmt.Fprintln(out, appI18n.Tp(ctx, "GamesPlayed", st.GamesCount))
	if st.GamesCount == 0 {
		return nil
	}
	for _, line := range quiz.StatisticsLines(ctx, st) {
		fmt.Fprintln(out, line)
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	closeLog, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	defer closeLog()
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	cfg := storeConfig(v)
	kv, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	st, err := stats.New(kv).Load(ctx)
	if err != nil {
		return err
	}

	backend := cfg.Backend
	if backend == "" {
		backend = store.BackendSQLite
	}
	export := model.StatsExport{
		ExportedAt: time.Now().UTC(),
		Store:      backend,
		Statistics: st,
	}

	var data []byte
	switch strings.ToLower(v.GetString("format")) {
	case "yaml", "yml":
		data, err = yaml.Marshal(export)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
	case "json":
		data, err = json.MarshalIndent(export, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q", v.GetString("format"))
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
