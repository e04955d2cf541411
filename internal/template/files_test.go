package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/formbuilder/internal/form"
)

const quiz = `
name: Quick quiz
category: demo
form:
  title: Quiz
  use_tiers: true
  elements:
    - id: q1
      type: question
      text: Pick one
      answer_type: single_choice
      options:
        - { id: a, label: A, points: 5 }
    - id: br
      type: pageBreak
    - id: q2
      type: question
      text: Why?
      answer_type: text
  tiers:
    - { id: top, label: Top, min_score: 5, max_score: 5, qualifies: true }
`

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "quiz.yaml", quiz)
	write(t, dir, "b.yml", "id: other\nname: Other\n")
	write(t, dir, "notes.txt", "ignored")
	write(t, dir, ".hidden.yaml", "::: not yaml")

	ts, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, ts, 2)

	assert.Equal(t, "other", ts[0].ID)
	q := ts[1]
	assert.Equal(t, "quiz", q.ID)
	assert.True(t, q.Builtin)
	assert.Equal(t, "demo", q.Category)
	assert.Equal(t, form.StatusDraft, q.Form.Status)
	require.Len(t, q.Form.Elements, 3)
	assert.Equal(t, 5, q.Form.Elements[0].Options[0].Points)
	assert.Equal(t, form.ElementPageBreak, q.Form.Elements[1].Type)
	require.Len(t, q.Form.Tiers, 1)
	assert.True(t, q.Form.Tiers[0].Qualifies)
	assert.Equal(t, 2, form.PageCount(q.Form.Elements))
}

func TestLoadDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.yaml", "name: [unterminated")
	_, err := LoadDir(dir)
	assert.Error(t, err)

	dir = t.TempDir()
	write(t, dir, "a.yaml", "description: no name\n")
	_, err = LoadDir(dir)
	assert.ErrorIs(t, err, ErrInvalid)

	dir = t.TempDir()
	write(t, dir, "a.yaml", "id: same\nname: A\n")
	write(t, dir, "b.yaml", "id: same\nname: B\n")
	_, err = LoadDir(dir)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBundledTemplatesLoad(t *testing.T) {
	ts, err := LoadDir(filepath.Join("..", "..", "templates"))
	require.NoError(t, err)
	require.NotEmpty(t, ts)
	for _, tpl := range ts {
		assert.NoError(t, form.Validate(tpl.Form), tpl.ID)
		assert.Empty(t, form.CheckTiers(tpl.Form.Tiers), tpl.ID)
	}
}
