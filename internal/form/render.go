package form

import (
	"bytes"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// md escapes raw HTML in author content (WithUnsafe is not set).
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Public is the respondent-facing projection of a published form.
type Public struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Design      Design      `json:"design"`
	Welcome     Welcome     `json:"welcome"`
	Completion  Completion  `json:"completion"`
	Pages       [][]Element `json:"pages"`
	PageCount   int         `json:"page_count"`
}

// PublicView normalizes f, keeps only question-bearing pages, renders text
// blocks to HTML and hides option points.
func PublicView(f Form) (Public, error) {
	f.Elements = append([]Element(nil), f.Elements...)
	f.Normalize()
	pages := QuestionPages(f.Elements)
	out := make([][]Element, 0, len(pages))
	for _, page := range pages {
		rendered := make([]Element, 0, len(page))
		for _, e := range page {
			switch e.Type {
			case ElementText:
				html, err := RenderMarkdown(e.Content)
				if err != nil {
					return Public{}, err
				}
				e.ContentHTML = html
			case ElementQuestion:
				opts := make([]Option, len(e.Options))
				for i, o := range e.Options {
					o.Points = 0
					opts[i] = o
				}
				e.Options = opts
			}
			rendered = append(rendered, e)
		}
		out = append(out, rendered)
	}
	return Public{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Design:      f.Design,
		Welcome:     f.Welcome,
		Completion:  f.Completion,
		Pages:       out,
		PageCount:   len(out),
	}, nil
}

// RenderMarkdown converts markdown to HTML with raw HTML escaped.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
