package handler

import (
	"sync"

	"github.com/pavelanni/moviequiz/internal/model"
)

// GameState is the JSON view of the current session.
type GameState struct {
	Loading        bool            `json:"loading"`
	Step           *model.StepView `json:"step,omitempty"`
	HasPoster      bool            `json:"has_poster"`
	Result         *bool           `json:"result,omitempty"`
	ButtonsEnabled bool            `json:"buttons_enabled"`
	Alert          *model.Alert    `json:"alert,omitempty"`
}

// Surface records what the controller shows so HTTP clients can poll it.
type Surface struct {
	mu    sync.Mutex
	state GameState
	image []byte
}

func NewSurface() *Surface {
	return &Surface{}
}

// Snapshot returns a copy of the current state.
func (s *Surface) Snapshot() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.Step != nil {
		step := *st.Step
		st.Step = &step
	}
	if st.Alert != nil {
		alert := *st.Alert
		st.Alert = &alert
	}
	return st
}

// Poster returns the image of the current question, if any.
func (s *Surface) Poster() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// takeAlert removes and returns the open alert.
func (s *Surface) takeAlert() (model.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Alert == nil {
		return model.Alert{}, false
	}
	alert := *s.state.Alert
	s.clearLocked()
	return alert, true
}

// dismissAlert drops the open alert without running its action.
func (s *Surface) dismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Alert != nil {
		s.clearLocked()
	}
}

// clearLocked forgets everything from the previous question or session.
func (s *Surface) clearLocked() {
	s.state.Alert = nil
	s.state.Step = nil
	s.state.HasPoster = false
	s.state.Result = nil
	s.image = nil
}

func (s *Surface) update(fn func(*GameState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// ShowLoadingIndicator also clears the previous question and any open alert.
func (s *Surface) ShowLoadingIndicator() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.state.Loading = true
}

func (s *Surface) HideLoadingIndicator() {
	s.update(func(st *GameState) { st.Loading = false })
}

func (s *Surface) RenderQuestion(step model.StepView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Alert = nil
	s.state.Result = nil
	s.state.Step = &step
	s.state.HasPoster = len(step.Image) > 0
	s.image = step.Image
}

func (s *Surface) ShowAnswerResult(isCorrect bool) {
	s.update(func(st *GameState) { st.Result = &isCorrect })
}

func (s *Surface) ClearAnswerResult() {
	s.update(func(st *GameState) { st.Result = nil })
}

func (s *Surface) SetAnswerButtonsEnabled(enabled bool) {
	s.update(func(st *GameState) { st.ButtonsEnabled = enabled })
}

func (s *Surface) PresentAlert(alert model.Alert) {
	s.update(func(st *GameState) { st.Alert = &alert })
}
