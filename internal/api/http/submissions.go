package http

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/formbuilder/internal/form"
	"github.com/mind-engage/formbuilder/internal/submission"
)

type submissionService interface {
	Submit(ctx context.Context, in submission.Input) (submission.Result, error)
	Delete(ctx context.Context, id string) error
}

// POST /api/submissions (public)
func SubmitHandler(svc submissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in submission.Input
		if !decodeJSON(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.FormID) == "" {
			http.Error(w, "form_id required", http.StatusBadRequest)
			return
		}
		res, err := svc.Submit(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// GET /api/submissions?form_id=&passed=&limit=&offset=
func ListSubmissionsHandler(store submission.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.List(r.Context(), submission.ListOpts{
			FormID: strings.TrimSpace(q.Get("form_id")),
			Passed: parseBool(q.Get("passed")),
			Limit:  parseIntDefault(q.Get("limit"), 100),
			Offset: parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/submissions/{id}
func GetSubmissionHandler(store submission.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// DELETE /api/submissions/{id}
func DeleteSubmissionHandler(svc submissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

const exportPage = 500

// GET /api/submissions/export.csv?form_id=
// One row per submission, one column per question in form order. Choice
// answers are written as option labels. Cells that a spreadsheet would read
// as a formula are prefixed with a quote.
func ExportSubmissionsHandler(forms form.Store, store submission.Store, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		formID := strings.TrimSpace(r.URL.Query().Get("form_id"))
		if formID == "" {
			http.Error(w, "form_id required", http.StatusBadRequest)
			return
		}
		f, err := forms.Get(r.Context(), formID)
		if err != nil {
			writeError(w, err)
			return
		}
		var questions []form.Element
		for _, e := range f.Elements {
			if e.IsQuestion() {
				questions = append(questions, e)
			}
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="submissions-%s.csv"`, formID))
		cw := csv.NewWriter(w)
		header := []string{"id", "created_at", "name", "email", "phone", "total_score", "passed", "tier"}
		for _, q := range questions {
			header = append(header, csvCell(q.Text))
		}
		_ = cw.Write(header)

		rows := 0
		for offset := 0; ; offset += exportPage {
			page, err := store.List(r.Context(), submission.ListOpts{FormID: formID, Limit: exportPage, Offset: offset})
			if err != nil {
				// Headers are sent; the file ends truncated.
				log.Error("export_list_failed", zap.String("form_id", formID), zap.Int("rows_written", rows), zap.Error(err))
				break
			}
			for _, s := range page {
				row := []string{
					s.ID,
					time.Unix(s.CreatedAt, 0).UTC().Format(time.RFC3339),
					csvCell(s.Contact.Name), csvCell(s.Contact.Email), csvCell(s.Contact.Phone),
					strconv.Itoa(s.TotalScore),
					strconv.FormatBool(s.Passed),
					csvCell(s.TierLabel),
				}
				for _, q := range questions {
					a, ok := s.Answers[q.ID]
					if !ok {
						row = append(row, "")
						continue
					}
					row = append(row, csvCell(answerText(q, a.Answer)))
				}
				_ = cw.Write(row)
				rows++
			}
			if len(page) < exportPage {
				break
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			log.Error("export_write_failed", zap.String("form_id", formID), zap.Error(err))
		}
	}
}

// csvCell neutralizes values starting with a formula trigger.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func answerText(q form.Element, a interface{}) string {
	label := func(s string) string {
		for _, o := range q.Options {
			if o.ID == s {
				return o.Label
			}
		}
		return s
	}
	switch v := a.(type) {
	case string:
		return label(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, label(fmt.Sprint(p)))
		}
		return strings.Join(parts, "; ")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
