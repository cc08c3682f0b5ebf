package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavelanni/moviequiz/internal/model"
)

type loadingMsg struct{ visible bool }

type questionMsg struct{ step model.StepView }

type answerResultMsg struct{ correct bool }

type clearResultMsg struct{}

type buttonsMsg struct{ enabled bool }

type alertMsg struct{ alert model.Alert }

// Surface forwards controller calls to a running program as messages.
// Calls made before Attach are dropped.
type Surface struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func NewSurface() *Surface {
	return &Surface{}
}

// Attach sets the destination, normally (*tea.Program).Send.
func (s *Surface) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

func (s *Surface) emit(msg tea.Msg) {
	s.mu.RLock()
	send := s.send
	s.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (s *Surface) ShowLoadingIndicator() { s.emit(loadingMsg{visible: true}) }

func (s *Surface) HideLoadingIndicator() { s.emit(loadingMsg{visible: false}) }

func (s *Surface) RenderQuestion(step model.StepView) { s.emit(questionMsg{step: step}) }

func (s *Surface) ShowAnswerResult(isCorrect bool) { s.emit(answerResultMsg{correct: isCorrect}) }

func (s *Surface) ClearAnswerResult() { s.emit(clearResultMsg{}) }

func (s *Surface) SetAnswerButtonsEnabled(enabled bool) { s.emit(buttonsMsg{enabled: enabled}) }

func (s *Surface) PresentAlert(alert model.Alert) { s.emit(alertMsg{alert: alert}) }
