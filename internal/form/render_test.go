package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	html, err := RenderMarkdown("**Bold** claim\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>Bold</strong>")
	assert.NotContains(t, html, "<script>")
}

func TestPublicView(t *testing.T) {
	f := Form{
		ID:     "f1",
		Title:  "Qualify",
		Status: StatusPublished,
		Elements: []Element{
			{ID: "intro", Type: ElementText, Content: "Welcome *friend*"},
			{ID: "b0", Type: ElementPageBreak},
			{ID: "h1", Type: ElementHeading, Text: "About you"},
			{ID: "q1", Type: ElementQuestion, AnswerType: AnswerSingleChoice, Options: []Option{{ID: "o1", Label: "Yes", Points: 10}}},
			{ID: "b1", Type: ElementPageBreak},
			{ID: "note", Type: ElementText, Content: "Almost done"},
			{ID: "q2", Type: ElementQuestion, AnswerType: AnswerEmail},
		},
	}

	pub, err := PublicView(f)
	require.NoError(t, err)

	require.Equal(t, 2, pub.PageCount)
	assert.Equal(t, []string{"h1", "q1"}, []string{pub.Pages[0][0].ID, pub.Pages[0][1].ID})
	assert.Equal(t, 0, pub.Pages[0][1].Options[0].Points)
	assert.Contains(t, pub.Pages[1][0].ContentHTML, "Almost done")

	// the source form keeps its points
	assert.Equal(t, 10, f.Elements[3].Options[0].Points)
}
