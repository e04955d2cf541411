package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mind-engage/formbuilder/internal/completion"
	"github.com/mind-engage/formbuilder/internal/form"
	"github.com/mind-engage/formbuilder/internal/lead"
	"github.com/mind-engage/formbuilder/internal/settings"
	"github.com/mind-engage/formbuilder/internal/storage"
	"github.com/mind-engage/formbuilder/internal/submission"
	"github.com/mind-engage/formbuilder/internal/template"
)

// maxJSONBody caps request bodies of JSON endpoints.
const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the body into v and answers 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps store and service errors to status codes. Anything not
// recognised is a 500 with a generic message.
func writeError(w http.ResponseWriter, err error) {
	var verr *submission.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, form.ErrNotFound), errors.Is(err, form.ErrNotPublished),
		errors.Is(err, submission.ErrNotFound), errors.Is(err, template.ErrNotFound),
		errors.Is(err, settings.ErrNotFound), errors.Is(err, completion.ErrNotFound),
		errors.Is(err, lead.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, template.ErrReadOnly):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, form.ErrInvalidForm), errors.Is(err, template.ErrInvalid),
		errors.Is(err, settings.ErrInvalidKey), errors.Is(err, settings.ErrNotJSON),
		errors.Is(err, completion.ErrInvalid), errors.Is(err, lead.ErrInvalidStatus),
		errors.Is(err, lead.ErrFormMismatch), errors.Is(err, storage.ErrInvalidKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, lead.ErrNoWhatsApp):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, storage.ErrUnsupportedType):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, storage.ErrTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

// parseBool returns nil for an absent or unparsable value.
func parseBool(s string) *bool {
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}
