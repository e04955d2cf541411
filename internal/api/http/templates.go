package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/formbuilder/internal/form"
	"github.com/mind-engage/formbuilder/internal/template"
)

// GET /api/templates?category=
func ListTemplatesHandler(store *template.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/templates/{id}
func GetTemplateHandler(store *template.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// POST /api/templates { form_id | form, name, description, category }
// Saves an existing form (or an inline form) as a user template.
func CreateTemplateHandler(store *template.SQLStore, forms form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FormID      string     `json:"form_id"`
			Form        *form.Form `json:"form"`
			Name        string     `json:"name"`
			Description string     `json:"description"`
			Category    string     `json:"category"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		var src form.Form
		switch {
		case req.FormID != "":
			f, err := forms.Get(r.Context(), req.FormID)
			if err != nil {
				writeError(w, err)
				return
			}
			src = f
		case req.Form != nil:
			src = *req.Form
			src.Normalize()
		default:
			http.Error(w, "form_id or form required", http.StatusBadRequest)
			return
		}
		t, err := store.Save(r.Context(), template.FromForm(src, req.Name, req.Description, req.Category))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

// DELETE /api/templates/{id}
func DeleteTemplateHandler(store *template.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /api/templates/{id}/use { title } creates a draft form.
func UseTemplateHandler(store *template.SQLStore, forms form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title string `json:"title"`
		}
		if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
			return
		}
		t, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		f, err := template.Instantiate(r.Context(), forms, t, req.Title)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, withWarnings(f))
	}
}
