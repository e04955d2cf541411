package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/formbuilder/internal/lead"
)

// POST /api/leads/track (public) { form_id, submission_id }
func TrackLeadHandler(t *lead.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in lead.TrackInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.FormID) == "" {
			http.Error(w, "form_id required", http.StatusBadRequest)
			return
		}
		l, err := t.Track(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": l.ID, "whatsapp_url": l.WhatsAppURL})
	}
}

// GET /api/leads?form_id=&status=&limit=&offset=
func ListLeadsHandler(store *lead.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := lead.ListOpts{
			FormID: strings.TrimSpace(q.Get("form_id")),
			Limit:  parseIntDefault(q.Get("limit"), 100),
			Offset: parseIntDefault(q.Get("offset"), 0),
		}
		if s := q.Get("status"); s != "" {
			st, err := lead.ParseStatus(s)
			if err != nil {
				writeError(w, err)
				return
			}
			opts.Status = st
		}
		list, err := store.List(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/leads/{id}
func GetLeadHandler(store *lead.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// PATCH /api/leads/{id} { status, notes }
func UpdateLeadHandler(t *lead.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p lead.Patch
		if !decodeJSON(w, r, &p) {
			return
		}
		l, err := t.Update(r.Context(), chi.URLParam(r, "id"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// GET /api/leads/stats?form_id=
func LeadStatsHandler(store *lead.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Stats(r.Context(), strings.TrimSpace(r.URL.Query().Get("form_id")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
