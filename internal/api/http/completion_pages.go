package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/formbuilder/internal/completion"
)

// GET /api/completion-pages?form_id=
func ListCompletionPagesHandler(store *completion.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := strings.TrimSpace(r.URL.Query().Get("form_id"))
		if formID == "" {
			http.Error(w, "form_id required", http.StatusBadRequest)
			return
		}
		pages, err := store.ListByForm(r.Context(), formID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pages)
	}
}

// POST /api/completion-pages
func CreateCompletionPageHandler(store *completion.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p completion.Page
		if !decodeJSON(w, r, &p) {
			return
		}
		p.ID = ""
		saved, err := store.Save(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// PUT /api/completion-pages/{id}
func PutCompletionPageHandler(store *completion.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := store.Get(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		var p completion.Page
		if !decodeJSON(w, r, &p) {
			return
		}
		p.ID = id
		saved, err := store.Save(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// DELETE /api/completion-pages/{id}
func DeleteCompletionPageHandler(store *completion.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
