package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/formbuilder/internal/settings"
)

// GET /api/settings
func GetWorkspaceSettingsHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := store.Workspace(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ws)
	}
}

// PUT /api/settings replaces the workspace document.
func PutWorkspaceSettingsHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ws settings.Workspace
		if !decodeJSON(w, r, &ws) {
			return
		}
		if err := store.SaveWorkspace(r.Context(), ws); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ws)
	}
}

// GET /api/settings/{key}
func GetSettingHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := store.Get(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// PUT /api/settings/{key} stores the raw body. Last write wins.
func PutSettingHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
		if err != nil {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		if err := store.Put(r.Context(), chi.URLParam(r, "key"), json.RawMessage(body)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
