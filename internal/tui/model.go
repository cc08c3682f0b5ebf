// Package tui is the terminal front end of the quiz.
package tui

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/pavelanni/moviequiz/internal/i18n"
	"github.com/pavelanni/moviequiz/internal/model"
)

// Game is the part of the quiz controller driven by key presses.
type Game interface {
	StartGame()
	SubmitAnswer(yes bool)
}

type keyMap struct {
	Yes     key.Binding
	No      key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func newKeyMap(ctx context.Context) keyMap {
	return keyMap{
		Yes:     key.NewBinding(key.WithKeys("y", "right"), key.WithHelp("y/→", i18n.T(ctx, "KeyYes"))),
		No:      key.NewBinding(key.WithKeys("n", "left"), key.WithHelp("n/←", i18n.T(ctx, "KeyNo"))),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", i18n.T(ctx, "KeyConfirm"))),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", i18n.T(ctx, "KeyQuit"))),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.Confirm, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Model is the Bubble Tea model. Its state mirrors what the controller
// last told the Surface.
type Model struct {
	ctx  context.Context
	game Game

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	loading        bool
	step           *model.StepView
	poster         string
	result         *bool
	buttonsEnabled bool
	alert          *model.Alert
	width          int
}

// NewModel creates the model. ctx carries the localizer used for labels.
func NewModel(ctx context.Context, game Game) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = numberStyle

	return Model{
		ctx:     ctx,
		game:    game,
		keys:    newKeyMap(ctx),
		help:    help.New(),
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		m.game.StartGame()
		return nil
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadingMsg:
		m.loading = msg.visible

	case questionMsg:
		step := msg.step
		m.step = &step
		m.poster = posterInfo(m.ctx, step.Image)

	case answerResultMsg:
		correct := msg.correct
		m.result = &correct

	case clearResultMsg:
		m.result = nil

	case buttonsMsg:
		m.buttonsEnabled = msg.enabled

	case alertMsg:
		alert := msg.alert
		m.alert = &alert

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case m.alert != nil:
		if !key.Matches(msg, m.keys.Confirm) {
			return m, nil
		}
		onConfirm := m.alert.OnConfirm
		m.alert = nil
		m.step = nil
		if onConfirm == nil {
			return m, nil
		}
		return m, func() tea.Msg {
			onConfirm()
			return nil
		}

	case !m.buttonsEnabled:
		return m, nil

	case key.Matches(msg, m.keys.Yes):
		return m, m.answer(true)

	case key.Matches(msg, m.keys.No):
		return m, m.answer(false)
	}
	return m, nil
}

func (m Model) answer(yes bool) tea.Cmd {
	return func() tea.Msg {
		m.game.SubmitAnswer(yes)
		return nil
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T(m.ctx, "AppTitle")))
	b.WriteString("\n\n")

	switch {
	case m.alert != nil:
		b.WriteString(m.renderAlert())
	case m.step != nil:
		b.WriteString(m.renderStep())
	}

	if m.loading {
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render(i18n.T(m.ctx, "Loading")))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return appStyle.Render(b.String())
}

func (m Model) renderStep() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		mutedStyle.Render(i18n.T(m.ctx, "QuestionLabel")+" "),
		numberStyle.Render(m.step.QuestionNumber),
	)

	var result string
	switch {
	case m.result == nil:
	case *m.result:
		result = correctStyle.Render(i18n.T(m.ctx, "AnswerCorrect"))
	default:
		result = wrongStyle.Render(i18n.T(m.ctx, "AnswerWrong"))
	}

	style := buttonStyle
	if !m.buttonsEnabled {
		style = buttonDisabledStyle
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		style.Render(i18n.T(m.ctx, "No")),
		"  ",
		style.Render(i18n.T(m.ctx, "Yes")),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		posterStyle.Render(m.poster),
		questionStyle.Render(m.step.Question),
		result,
		buttons,
	)
}

func (m Model) renderAlert() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.alert.Title),
		"",
		m.alert.Message,
		"",
		numberStyle.Render("[enter] "+m.alert.ButtonText),
	)
	return alertStyle.Render(body)
}

// posterInfo describes the poster since the terminal cannot draw it.
func posterInfo(ctx context.Context, img []byte) string {
	if len(img) == 0 {
		return i18n.T(ctx, "NoPoster")
	}
	size := humanize.Bytes(uint64(len(img)))
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return size
	}
	return i18n.Td(ctx, "PosterInfo", map[string]any{
		"Width":  cfg.Width,
		"Height": cfg.Height,
		"Size":   size,
	})
}
