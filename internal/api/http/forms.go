package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/formbuilder/internal/form"
)

// formResponse carries tier warnings next to the saved form. Warnings never
// block a save.
type formResponse struct {
	form.Form
	Warnings []string `json:"warnings,omitempty"`
}

func withWarnings(f form.Form) formResponse {
	return formResponse{Form: f, Warnings: form.CheckTiers(f.Tiers)}
}

// GET /api/forms?q=&status=&limit=&offset=
func ListFormsHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.List(r.Context(), form.ListOpts{
			Q:      strings.TrimSpace(q.Get("q")),
			Status: form.Status(q.Get("status")),
			Limit:  parseIntDefault(q.Get("limit"), 50),
			Offset: parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /api/forms
func CreateFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f form.Form
		if !decodeJSON(w, r, &f) {
			return
		}
		created, err := store.Create(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, withWarnings(created))
	}
}

// GET /api/forms/{id}
func GetFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, withWarnings(f))
	}
}

// PATCH /api/forms/{id}
func UpdateFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p form.Patch
		if !decodeJSON(w, r, &p) {
			return
		}
		f, err := store.Update(r.Context(), chi.URLParam(r, "id"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, withWarnings(f))
	}
}

// DELETE /api/forms/{id}
func DeleteFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/forms/{id}/pages returns the editor pagination: every element,
// split at page breaks.
func FormPagesHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		pages := form.GroupElementsIntoPages(f.Elements)
		writeJSON(w, http.StatusOK, map[string]any{
			"pages":      pages,
			"page_count": len(pages),
			"max_score":  form.MaxScore(f.Elements),
		})
	}
}

// POST /api/forms/{id}/duplicate creates a draft copy titled "<title> (copy)".
func DuplicateFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		f.ID = ""
		f.Title += " (copy)"
		f.Status = form.StatusDraft
		created, err := store.Create(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, withWarnings(created))
	}
}

// GET /api/forms/public/{id}
func PublicFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := store.GetPublished(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		view, err := form.PublicView(f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
