// Package quiz runs a movie quiz session: it asks a Generator for questions,
// scores answers and records finished sessions.
//
// Session state belongs to the Controller and is only touched from its
// Executor. Exported Controller methods may be called from any goroutine.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/moviequiz/internal/i18n"
	"github.com/pavelanni/moviequiz/internal/model"
)

// AnswerDelay is how long an answer result stays on screen.
const AnswerDelay = time.Second

const recordDateLayout = "02.01.06 15:04"

// State is the controller's position in a session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateAwaitingAnswer
	StateScoring
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateScoring:
		return "scoring"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Surface is the presentation layer driven by the controller. Methods are
// called on the controller's execution context.
type Surface interface {
	ShowLoadingIndicator()
	HideLoadingIndicator()
	RenderQuestion(step model.StepView)
	ShowAnswerResult(isCorrect bool)
	ClearAnswerResult()
	SetAnswerButtonsEnabled(enabled bool)
	PresentAlert(alert model.Alert)
}

// QuestionSource produces questions asynchronously.
type QuestionSource interface {
	LoadData(ctx context.Context, deliver func(Event))
	RequestNextQuestion(ctx context.Context, deliver func(Event))
}

// StatsStore records finished sessions.
type StatsStore interface {
	Store(ctx context.Context, correct, total int) (model.Statistics, error)
}

// Controller drives one player's quiz sessions.
type Controller struct {
	ctx       context.Context
	exec      Executor
	surface   Surface
	questions QuestionSource
	stats     StatsStore
	delay     time.Duration

	state          State
	epoch          int
	currentIndex   int
	correctAnswers int
	current        *model.Question
}

// Option configures a Controller.
type Option func(*Controller)

// WithAnswerDelay overrides AnswerDelay.
func WithAnswerDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// NewController creates an idle controller. ctx carries the localizer and
// bounds all generator work.
func NewController(ctx context.Context, exec Executor, surface Surface, questions QuestionSource, stats StatsStore, opts ...Option) *Controller {
	c := &Controller{
		ctx:       ctx,
		exec:      exec,
		surface:   surface,
		questions: questions,
		stats:     stats,
		delay:     AnswerDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartGame begins a new session.
func (c *Controller) StartGame() {
	c.exec.Dispatch(c.startGame)
}

// SubmitAnswer scores the player's answer to the current question. It is
// ignored unless a question is waiting for an answer.
func (c *Controller) SubmitAnswer(yes bool) {
	c.exec.Dispatch(func() { c.submitAnswer(yes) })
}

// Restart resets the counters and starts over.
func (c *Controller) Restart() {
	c.exec.Dispatch(c.restart)
}

// convert builds the view of q at the current position.
func (c *Controller) convert(q model.Question) model.StepView {
	return model.StepView{
		Image:          q.Image,
		Question:       q.Text,
		QuestionNumber: fmt.Sprintf("%d/%d", c.currentIndex+1, model.QuestionsAmount),
	}
}

func (c *Controller) startGame() {
	c.epoch++
	c.state = StateLoading
	c.currentIndex = 0
	c.correctAnswers = 0
	c.current = nil

	slog.Debug("starting game", "epoch", c.epoch)
	c.surface.SetAnswerButtonsEnabled(false)
	c.surface.ShowLoadingIndicator()
	c.questions.LoadData(c.ctx, c.deliverer(c.epoch))
}

func (c *Controller) restart() {
	c.currentIndex = 0
	c.correctAnswers = 0
	c.startGame()
}

// deliverer marshals generator results onto the execution context, tagged
// with the session they belong to.
func (c *Controller) deliverer(epoch int) func(Event) {
	return func(e Event) {
		c.exec.Dispatch(func() { c.handle(epoch, e) })
	}
}

func (c *Controller) handle(epoch int, e Event) {
	if epoch != c.epoch {
		slog.Debug("dropping result from previous session", "kind", e.Kind, "epoch", epoch)
		return
	}

	switch e.Kind {
	case EventDataLoaded:
		c.surface.HideLoadingIndicator()
		c.questions.RequestNextQuestion(c.ctx, c.deliverer(epoch))

	case EventQuestionReady:
		if c.state != StateLoading {
			slog.Debug("unexpected question", "state", c.state)
			return
		}
		q := e.Question
		c.current = &q
		c.state = StateAwaitingAnswer
		c.surface.HideLoadingIndicator()
		c.surface.RenderQuestion(c.convert(q))
		c.surface.SetAnswerButtonsEnabled(true)

	case EventFailed:
		slog.Error("loading movies failed", "error", e.Err)
		c.state = StateIdle
		c.surface.HideLoadingIndicator()
		c.surface.PresentAlert(model.Alert{
			Title:      i18n.T(c.ctx, "ErrorTitle"),
			Message:    e.Err.Error(),
			ButtonText: i18n.T(c.ctx, "TryAgain"),
			OnConfirm:  c.Restart,
		})
	}
}

func (c *Controller) submitAnswer(yes bool) {
	if c.state != StateAwaitingAnswer || c.current == nil {
		slog.Debug("answer ignored", "state", c.state)
		return
	}

	isCorrect := yes == c.current.CorrectAnswer
	if isCorrect {
		c.correctAnswers++
	}
	c.state = StateScoring
	c.surface.SetAnswerButtonsEnabled(false)
	c.surface.ShowAnswerResult(isCorrect)

	epoch := c.epoch
	c.exec.After(c.delay, func() {
		if epoch == c.epoch {
			c.advance()
		}
	})
}

func (c *Controller) advance() {
	if c.state != StateScoring {
		return
	}
	c.surface.ClearAnswerResult()
	c.current = nil

	if c.currentIndex == model.QuestionsAmount-1 {
		c.endSession()
		return
	}

	c.currentIndex++
	c.state = StateLoading
	c.surface.ShowLoadingIndicator()
	c.questions.RequestNextQuestion(c.ctx, c.deliverer(c.epoch))
}

func (c *Controller) endSession() {
	c.state = StateFinished

	st, err := c.stats.Store(c.ctx, c.correctAnswers, model.QuestionsAmount)
	if err != nil {
		slog.Error("saving statistics failed", "error", err)
	}
	slog.Info("session finished", "correct", c.correctAnswers, "total", model.QuestionsAmount)

	c.surface.PresentAlert(model.Alert{
		Title:      i18n.T(c.ctx, "RoundOverTitle"),
		Message:    c.summary(st, err),
		ButtonText: i18n.T(c.ctx, "PlayAgain"),
		OnConfirm:  c.Restart,
	})
}

// summary falls back to the session score alone when statistics could not be saved.
func (c *Controller) summary(st model.Statistics, storeErr error) string {
	lines := []string{
		i18n.Td(c.ctx, "ResultLine", map[string]any{
			"Correct": c.correctAnswers,
			"Total":   model.QuestionsAmount,
		}),
	}
	if storeErr != nil {
		return lines[0]
	}
	return strings.Join(append(lines, StatisticsLines(c.ctx, st)...), "\n")
}

// StatisticsLines renders lifetime statistics, one fact per line.
func StatisticsLines(ctx context.Context, st model.Statistics) []string {
	return []string{
		i18n.Td(ctx, "GamesPlayedLine", map[string]any{"Count": st.GamesCount}),
		i18n.Td(ctx, "BestGameLine", map[string]any{
			"Correct": st.BestGame.Correct,
			"Total":   st.BestGame.Total,
			"Date":    st.BestGame.Date.Local().Format(recordDateLayout),
		}),
		i18n.Td(ctx, "AccuracyLine", map[string]any{"Accuracy": fmt.Sprintf("%.2f", st.Accuracy)}),
	}
}
