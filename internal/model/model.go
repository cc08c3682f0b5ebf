package model

import (
	"strings"
	"time"
)

// QuestionsAmount is the number of questions in one quiz session.
const QuestionsAmount = 10

// Movie is a single catalog entry used to build questions.
type Movie struct {
	Title    string `json:"title"`
	Rating   string `json:"imDbRating"`
	ImageURL string `json:"image"`
}

// ResizedImageURL returns the 600px-wide poster rendition. URLs without a size
// suffix are returned as is.
func (m Movie) ResizedImageURL() string {
	base, _, found := strings.Cut(m.ImageURL, "._")
	if !found {
		return m.ImageURL
	}
	return base + "._V0_UX600_.jpg"
}

// MostPopularMovies is the catalog response body.
type MostPopularMovies struct {
	ErrorMessage string  `json:"errorMessage"`
	Items        []Movie `json:"items"`
}

// Question is one yes/no round. It is immutable once built.
type Question struct {
	Image         []byte
	Text          string
	CorrectAnswer bool
}

// StepView is what a presentation surface renders for a question.
type StepView struct {
	Image          []byte `json:"-"`
	Question       string `json:"question"`
	QuestionNumber string `json:"question_number"`
}

// Alert is a modal with a single action.
type Alert struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	ButtonText string `json:"button_text"`
	OnConfirm  func() `json:"-"`
}

// GameRecord is the best single-session result.
type GameRecord struct {
	Correct int       `json:"correct" yaml:"correct"`
	Total   int       `json:"total" yaml:"total"`
	Date    time.Time `json:"date" yaml:"date"`
}

// IsBetter reports whether a session with count correct answers beats the record.
// Only the correct count is compared; the total is ignored.
func (r GameRecord) IsBetter(count int) bool {
	return r.Correct < count
}

// Statistics holds lifetime quiz statistics.
type Statistics struct {
	GamesCount     int        `json:"games_count" yaml:"games_count"`
	CorrectAnswers int        `json:"correct_answers" yaml:"correct_answers"`
	TotalQuestions int        `json:"total_questions" yaml:"total_questions"`
	Accuracy       float64    `json:"accuracy" yaml:"accuracy"`
	BestGame       GameRecord `json:"best_game" yaml:"best_game"`
}

// QuizConfig holds runtime parameters set via CLI flags.
type QuizConfig struct {
	CatalogURL  string
	HTTPTimeout time.Duration
	Lang        string
}
