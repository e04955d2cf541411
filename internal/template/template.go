// Package template keeps reusable form blueprints. Builtin templates come
// from YAML files on disk and cannot be deleted through the API.
package template

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/formbuilder/internal/form"
)

var (
	ErrNotFound = errors.New("template not found")
	ErrReadOnly = errors.New("builtin templates are read-only")
	ErrInvalid  = errors.New("invalid template")
)

type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Builtin     bool      `json:"builtin"`
	Form        form.Form `json:"form"`
	CreatedAt   int64     `json:"created_at"`
}

// FromForm captures f as a template. Identity, status and timestamps of the
// form are dropped.
func FromForm(f form.Form, name, description, category string) Template {
	f.ID = ""
	f.Status = form.StatusDraft
	f.CreatedAt, f.UpdatedAt = 0, 0
	if strings.TrimSpace(name) == "" {
		name = f.Title
	}
	return Template{Name: name, Description: description, Category: category, Form: f}
}

type FormCreator interface {
	Create(ctx context.Context, f form.Form) (form.Form, error)
}

// Instantiate creates a new draft form from t. A non-empty title replaces
// the template's.
func Instantiate(ctx context.Context, forms FormCreator, t Template, title string) (form.Form, error) {
	f := t.Form
	f.ID = ""
	f.Status = form.StatusDraft
	f.Elements = append([]form.Element(nil), f.Elements...)
	f.Tiers = append([]form.ScoreTier(nil), f.Tiers...)
	if strings.TrimSpace(title) != "" {
		f.Title = title
	}
	if strings.TrimSpace(f.Title) == "" {
		f.Title = t.Name
	}
	created, err := forms.Create(ctx, f)
	if err != nil {
		return form.Form{}, fmt.Errorf("instantiate template %s: %w", t.ID, err)
	}
	return created, nil
}
