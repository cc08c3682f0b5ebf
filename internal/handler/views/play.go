// Package views renders the HTML play page.
package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Step is the question currently on screen.
type Step struct {
	Number    string
	Text      string
	HasPoster bool
}

// AlertView is an open modal. Lines are rendered as separate paragraphs.
type AlertView struct {
	Title      string
	Lines      []string
	ButtonText string
}

// PlayData holds everything the play page shows, already localized.
type PlayData struct {
	BasePath string
	Title    string

	Loading     bool
	LoadingText string

	QuestionLabel string
	Step          *Step
	NoPosterText  string

	// Result is "correct", "wrong" or empty.
	Result     string
	ResultText string

	ButtonsEnabled bool
	YesLabel       string
	NoLabel        string
	StartLabel     string

	Alert *AlertView
}

// Refresh reports whether the page should reload itself while the game moves on.
func (d PlayData) Refresh() bool {
	if d.Alert != nil {
		return false
	}
	return d.Loading || (d.Step != nil && !d.ButtonsEnabled)
}

// ShowStart reports whether there is nothing to play yet.
func (d PlayData) ShowStart() bool {
	return d.Alert == nil && d.Step == nil && !d.Loading
}

func (d PlayData) url(path string) string {
	return string(templ.URL(d.BasePath + path))
}

const pageStyle = `body{font-family:sans-serif;background:#1e1e2e;color:#cdd6f4;max-width:36rem;margin:2rem auto;padding:0 1rem}
h1{color:#74c7ec}.number{color:#fab387;font-weight:bold}
.poster{border:1px solid #45475a;border-radius:8px;min-height:12rem;display:flex;align-items:center;justify-content:center}
.poster img{max-width:100%;border-radius:8px}
.correct{border-color:#a6e3a1;color:#a6e3a1}.wrong{border-color:#f38ba8;color:#f38ba8}
.buttons{display:flex;gap:1rem;margin-top:1rem}button{flex:1;padding:.75rem;font-size:1.1rem}
.alert{border:3px double #fab387;padding:1rem;border-radius:8px}`

// PlayPage renders the full play page.
func PlayPage(d PlayData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		e := templ.EscapeString

		b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if d.Refresh() {
			b.WriteString(`<meta http-equiv="refresh" content="1">`)
		}
		b.WriteString(`<title>` + e(d.Title) + `</title><style>` + pageStyle + `</style></head><body>`)
		b.WriteString(`<h1>` + e(d.Title) + `</h1>`)

		switch {
		case d.Alert != nil:
			writeAlert(&b, d)
		case d.Step != nil:
			writeStep(&b, d)
		case d.ShowStart():
			b.WriteString(`<form method="post" action="` + e(d.url("/play/start")) + `">`)
			b.WriteString(`<button type="submit">` + e(d.StartLabel) + `</button></form>`)
		}

		if d.Loading {
			b.WriteString(`<p class="loading">` + e(d.LoadingText) + `</p>`)
		}
		b.WriteString(`</body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeStep(b *strings.Builder, d PlayData) {
	e := templ.EscapeString

	b.WriteString(`<p>` + e(d.QuestionLabel) + ` <span class="number">` + e(d.Step.Number) + `</span></p>`)

	class := "poster"
	if d.Result != "" {
		class += " " + d.Result
	}
	b.WriteString(`<div class="` + e(class) + `">`)
	if d.Step.HasPoster {
		b.WriteString(`<img src="` + e(d.url("/api/game/poster")) + `" alt="` + e(d.Step.Text) + `">`)
	} else {
		b.WriteString(e(d.NoPosterText))
	}
	b.WriteString(`</div>`)

	b.WriteString(`<h2>` + e(d.Step.Text) + `</h2>`)
	if d.Result != "" {
		b.WriteString(`<p class="` + e(d.Result) + `">` + e(d.ResultText) + `</p>`)
	}

	disabled := ""
	if !d.ButtonsEnabled {
		disabled = " disabled"
	}
	b.WriteString(`<form class="buttons" method="post" action="` + e(d.url("/play/answer")) + `">`)
	b.WriteString(`<button type="submit" name="answer" value="no"` + disabled + `>` + e(d.NoLabel) + `</button>`)
	b.WriteString(`<button type="submit" name="answer" value="yes"` + disabled + `>` + e(d.YesLabel) + `</button>`)
	b.WriteString(`</form>`)
}

func writeAlert(b *strings.Builder, d PlayData) {
	e := templ.EscapeString

	b.WriteString(`<div class="alert"><h2>` + e(d.Alert.Title) + `</h2>`)
	for _, line := range d.Alert.Lines {
		b.WriteString(`<p>` + e(line) + `</p>`)
	}
	b.WriteString(`<form method="post" action="` + e(d.url("/play/confirm")) + `">`)
	b.WriteString(`<button type="submit">` + e(d.Alert.ButtonText) + `</button></form></div>`)
}
