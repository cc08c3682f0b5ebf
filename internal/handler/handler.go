package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/moviequiz/internal/handler/views"
	"github.com/pavelanni/moviequiz/internal/i18n"
	"github.com/pavelanni/moviequiz/internal/model"
	"github.com/pavelanni/moviequiz/internal/quiz"
)

var (
	errNotAwaiting = errors.New("no question is waiting for an answer")
	errNoAlert     = errors.New("no alert to confirm")
)

// Game is the part of the quiz controller exposed over HTTP.
type Game interface {
	StartGame()
	SubmitAnswer(yes bool)
}

// StatsLoader reads lifetime statistics.
type StatsLoader interface {
	Load(ctx context.Context) (model.Statistics, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	game     Game
	surface  *Surface
	stats    StatsLoader
	basePath string
}

// New creates a new Handler. surface must be the one the game renders to.
// basePath is the prefix the routes are mounted under, without a trailing slash.
func New(game Game, surface *Surface, stats StatsLoader, basePath string) *Handler {
	return &Handler{game: game, surface: surface, stats: stats, basePath: basePath}
}

// Routes registers all HTTP routes.
//
// Start, answer and confirm only queue work for the game and answer 202 with
// no body; clients poll GET /api/game for the resulting state. The HTML page
// at / posts forms to /play/* and reloads itself while the game moves on.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handlePlayPage)
	r.Post("/play/start", h.handlePlayStart)
	r.Post("/play/answer", h.handlePlayAnswer)
	r.Post("/play/confirm", h.handlePlayConfirm)

	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/game", h.handleGame)
		r.Post("/game/start", h.handleStart)
		r.Post("/game/answer", h.handleAnswer)
		r.Post("/game/confirm", h.handleConfirm)
		r.Get("/game/poster", h.handlePoster)
		r.Get("/stats", h.handleStats)
	})
}

type answerRequest struct {
	Answer *bool `json:"answer"`
}

type statsResponse struct {
	Statistics  model.Statistics `json:"statistics"`
	GamesPlayed string           `json:"games_played"`
	Summary     []string         `json:"summary"`
}

// start drops a leftover alert so it cannot restart the new session later.
func (h *Handler) start() {
	h.surface.dismissAlert()
	h.game.StartGame()
}

func (h *Handler) answer(yes bool) error {
	if !h.surface.Snapshot().ButtonsEnabled {
		return errNotAwaiting
	}
	h.game.SubmitAnswer(yes)
	return nil
}

func (h *Handler) confirm() error {
	alert, ok := h.surface.takeAlert()
	if !ok {
		return errNoAlert
	}
	if alert.OnConfirm != nil {
		alert.OnConfirm()
	}
	return nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handler) handleGame(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.surface.Snapshot())
}

func (h *Handler) handleStart(w http.ResponseWriter, _ *http.Request) {
	h.start()
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Answer == nil {
		http.Error(w, "answer is required", http.StatusBadRequest)
		return
	}
	if err := h.answer(*req.Answer); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, _ *http.Request) {
	if err := h.confirm(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handlePoster(w http.ResponseWriter, _ *http.Request) {
	img := h.surface.Poster()
	if len(img) == 0 {
		http.Error(w, "no poster", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img))
	_, _ = w.Write(img)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Statistics:  st,
		GamesPlayed: i18n.Tp(r.Context(), "GamesPlayed", st.GamesCount),
		Summary:     quiz.StatisticsLines(r.Context(), st),
	})
}

func (h *Handler) handlePlayPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.PlayPage(h.playData(r.Context())).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handlePlayStart(w http.ResponseWriter, r *http.Request) {
	h.start()
	h.redirectToPlay(w, r)
}

func (h *Handler) handlePlayAnswer(w http.ResponseWriter, r *http.Request) {
	var yes bool
	switch r.FormValue("answer") {
	case "yes":
		yes = true
	case "no":
	default:
		http.Error(w, "answer must be yes or no", http.StatusBadRequest)
		return
	}
	// A late click after scoring started just shows the page again.
	if err := h.answer(yes); err != nil {
		slog.Debug("answer ignored", "error", err)
	}
	h.redirectToPlay(w, r)
}

func (h *Handler) handlePlayConfirm(w http.ResponseWriter, r *http.Request) {
	if err := h.confirm(); err != nil {
		slog.Debug("confirm ignored", "error", err)
	}
	h.redirectToPlay(w, r)
}

func (h *Handler) redirectToPlay(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.basePath+"/", http.StatusSeeOther)
}

func (h *Handler) playData(ctx context.Context) views.PlayData {
	st := h.surface.Snapshot()
	d := views.PlayData{
		BasePath:       h.basePath,
		Title:          i18n.T(ctx, "AppTitle"),
		Loading:        st.Loading,
		LoadingText:    i18n.T(ctx, "Loading"),
		QuestionLabel:  i18n.T(ctx, "QuestionLabel"),
		NoPosterText:   i18n.T(ctx, "NoPoster"),
		ButtonsEnabled: st.ButtonsEnabled,
		YesLabel:       i18n.T(ctx, "Yes"),
		NoLabel:        i18n.T(ctx, "No"),
		StartLabel:     i18n.T(ctx, "StartGame"),
	}
	if st.Step != nil {
		d.Step = &views.Step{
			Number:    st.Step.QuestionNumber,
			Text:      st.Step.Question,
			HasPoster: st.HasPoster,
		}
	}
	if st.Result != nil {
		if *st.Result {
			d.Result, d.ResultText = "correct", i18n.T(ctx, "AnswerCorrect")
		} else {
			d.Result, d.ResultText = "wrong", i18n.T(ctx, "AnswerWrong")
		}
	}
	if st.Alert != nil {
		d.Alert = &views.AlertView{
			Title:      st.Alert.Title,
			Lines:      strings.Split(st.Alert.Message, "\n"),
			ButtonText: st.Alert.ButtonText,
		}
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
