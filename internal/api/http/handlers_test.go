package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mind-engage/formbuilder/internal/completion"
	"github.com/mind-engage/formbuilder/internal/db/dbtest"
	"github.com/mind-engage/formbuilder/internal/eventlog"
	"github.com/mind-engage/formbuilder/internal/form"
	"github.com/mind-engage/formbuilder/internal/lead"
	"github.com/mind-engage/formbuilder/internal/scoring"
	"github.com/mind-engage/formbuilder/internal/settings"
	"github.com/mind-engage/formbuilder/internal/storage"
	"github.com/mind-engage/formbuilder/internal/submission"
	"github.com/mind-engage/formbuilder/internal/template"
)

type env struct {
	forms     *form.SQLStore
	subs      *submission.SQLStore
	settings  *settings.Store
	templates *template.SQLStore
	router    chi.Router
}

// newEnv mounts every handler without auth; route guards are tested with
// the server wiring.
func newEnv(t *testing.T) *env {
	t.Helper()
	dbh := dbtest.Open(t)
	e := &env{
		forms:     form.NewSQLStore(dbh),
		subs:      submission.NewSQLStore(dbh),
		settings:  settings.NewStore(dbh, ""),
		templates: template.NewSQLStore(dbh),
	}
	pages := completion.NewStore(dbh)
	events := eventlog.NewRepo(dbh, "")
	svc := submission.NewService(e.forms, e.subs, scoring.NewEngine(),
		submission.WithEvents(events), submission.WithCompletions(pages), submission.WithSyncBackground())
	leads := lead.NewSQLStore(dbh)
	tracker := lead.NewTracker(leads, e.forms, e.subs, e.settings, events, nil)
	bs, err := storage.NewFSStore(t.TempDir(), "http://forms.test")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/api/forms", ListFormsHandler(e.forms))
	r.Post("/api/forms", CreateFormHandler(e.forms))
	r.Get("/api/forms/public/{id}", PublicFormHandler(e.forms))
	r.Get("/api/forms/{id}", GetFormHandler(e.forms))
	r.Patch("/api/forms/{id}", UpdateFormHandler(e.forms))
	r.Delete("/api/forms/{id}", DeleteFormHandler(e.forms))
	r.Get("/api/forms/{id}/pages", FormPagesHandler(e.forms))
	r.Post("/api/forms/{id}/duplicate", DuplicateFormHandler(e.forms))
	r.Post("/api/submissions", SubmitHandler(svc))
	r.Get("/api/submissions", ListSubmissionsHandler(e.subs))
	r.Get("/api/submissions/export.csv", ExportSubmissionsHandler(e.forms, e.subs, zaptest.NewLogger(t)))
	r.Get("/api/submissions/{id}", GetSubmissionHandler(e.subs))
	r.Delete("/api/submissions/{id}", DeleteSubmissionHandler(svc))
	r.Get("/api/templates", ListTemplatesHandler(e.templates))
	r.Post("/api/templates", CreateTemplateHandler(e.templates, e.forms))
	r.Get("/api/templates/{id}", GetTemplateHandler(e.templates))
	r.Delete("/api/templates/{id}", DeleteTemplateHandler(e.templates))
	r.Post("/api/templates/{id}/use", UseTemplateHandler(e.templates, e.forms))
	r.Get("/api/settings", GetWorkspaceSettingsHandler(e.settings))
	r.Put("/api/settings", PutWorkspaceSettingsHandler(e.settings))
	r.Get("/api/settings/{key}", GetSettingHandler(e.settings))
	r.Put("/api/settings/{key}", PutSettingHandler(e.settings))
	r.Post("/api/upload/logo", UploadLogoHandler(bs, 1024))
	r.Route("/assets", func(ar chi.Router) { MountAssets(ar, bs) })
	r.Post("/api/leads/track", TrackLeadHandler(tracker))
	r.Get("/api/leads", ListLeadsHandler(leads))
	r.Get("/api/leads/stats", LeadStatsHandler(leads))
	r.Get("/api/leads/{id}", GetLeadHandler(leads))
	r.Patch("/api/leads/{id}", UpdateLeadHandler(tracker))
	r.Get("/api/completion-pages", ListCompletionPagesHandler(pages))
	r.Post("/api/completion-pages", CreateCompletionPageHandler(pages))
	r.Put("/api/completion-pages/{id}", PutCompletionPageHandler(pages))
	r.Delete("/api/completion-pages/{id}", DeleteCompletionPageHandler(pages))
	r.Get("/api/events", ListEventsHandler(events))
	e.router = r
	return e
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

const formBody = `{
  "title": "Fit check",
  "status": "published",
  "use_tiers": true,
  "elements": [
    {"id": "intro", "type": "text", "content": "Hello <script>x</script> **there**"},
    {"id": "budget", "type": "question", "text": "Budget?", "answer_type": "single_choice", "required": true,
     "options": [{"id": "lo", "label": "Small", "points": 1}, {"id": "hi", "label": "Large", "points": 20}]},
    {"id": "pb", "type": "pageBreak"},
    {"id": "h", "type": "heading", "text": "Only a heading"},
    {"id": "pb2", "type": "pageBreak"},
    {"id": "goal", "type": "question", "text": "Goal?", "answer_type": "text"}
  ],
  "tiers": [
    {"id": "cold", "label": "Cold", "min_score": 0, "max_score": 9},
    {"id": "hot", "label": "Hot", "min_score": 12, "max_score": 40, "qualifies": true}
  ]
}`

func createForm(t *testing.T, e *env) form.Form {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/forms", formBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		form.Form
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, []string{"no tier covers scores 10..11"}, out.Warnings)
	return out.Form
}

func TestFormLifecycle(t *testing.T) {
	e := newEnv(t)
	f := createForm(t, e)
	require.NotEmpty(t, f.ID)

	pages := decode[map[string]json.RawMessage](t, e.do(t, http.MethodGet, "/api/forms/"+f.ID+"/pages", nil))
	assert.JSONEq(t, "3", string(pages["page_count"]))
	assert.JSONEq(t, "20", string(pages["max_score"]))

	rec := e.do(t, http.MethodPatch, "/api/forms/"+f.ID, `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decode[form.Form](t, rec).Title)

	rec = e.do(t, http.MethodPost, "/api/forms/"+f.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	dup := decode[form.Form](t, rec)
	assert.Equal(t, "Renamed (copy)", dup.Title)
	assert.Equal(t, form.StatusDraft, dup.Status)

	list := decode[[]form.Summary](t, e.do(t, http.MethodGet, "/api/forms?q=copy", nil))
	require.Len(t, list, 1)
	assert.Equal(t, dup.ID, list[0].ID)

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/forms/"+dup.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/forms/"+dup.ID, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/forms", `{"title":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/forms", `{`).Code)
}

func TestPublicFormView(t *testing.T) {
	e := newEnv(t)
	f := createForm(t, e)

	rec := e.do(t, http.MethodGet, "/api/forms/public/"+f.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, `"points":20`)
	assert.NotContains(t, body, "<script>")

	pub := decode[form.Public](t, rec)
	assert.Equal(t, 2, pub.PageCount)
	require.Len(t, pub.Pages[0], 2)
	assert.Contains(t, pub.Pages[0][0].ContentHTML, "<strong>there</strong>")

	_, err := e.forms.Update(context.Background(), f.ID, form.Patch{Status: ptr(form.StatusDraft)})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/forms/public/"+f.ID, nil).Code)
}

func ptr[T any](v T) *T { return &v }

func TestSubmitAndExport(t *testing.T) {
	e := newEnv(t)
	f := createForm(t, e)

	rec := e.do(t, http.MethodPost, "/api/submissions", map[string]any{
		"form_id": f.ID,
		"answers": map[string]any{"budget": "hi", "goal": "grow, fast"},
		"contact": map[string]any{"name": "Ana", "email": "ana@example.com"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[submission.Result](t, rec)
	assert.Equal(t, 20, res.Outcome.Total)
	assert.True(t, res.Outcome.Passed)
	assert.Equal(t, "hot", res.Submission.TierID)

	rec = e.do(t, http.MethodPost, "/api/submissions", map[string]any{
		"form_id": f.ID,
		"answers": map[string]any{},
		"contact": map[string]any{"name": "A", "email": "nope"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	verr := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rec)
	assert.Equal(t, "validation failed", verr.Error)
	assert.Equal(t, map[string]string{
		"answers.budget": "this question is required",
		"contact.name":   "name is too short",
		"contact.email":  "email is not valid",
	}, verr.Fields)

	list := decode[[]submission.Submission](t, e.do(t, http.MethodGet, "/api/submissions?form_id="+f.ID+"&passed=true", nil))
	require.Len(t, list, 1)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/submissions/"+list[0].ID, nil).Code)

	rec = e.do(t, http.MethodGet, "/api/submissions/export.csv?form_id="+f.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "created_at", "name", "email", "phone", "total_score", "passed", "tier", "Budget?", "Goal?"}, rows[0])
	assert.Equal(t, "Large", rows[1][8])
	assert.Equal(t, "grow, fast", rows[1][9])
	assert.Equal(t, "Hot", rows[1][7])

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/submissions/export.csv", nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/submissions/"+list[0].ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/api/submissions/"+list[0].ID, nil).Code)

	feed := decode[struct {
		Events []eventlog.Event `json:"events"`
		Next   int64            `json:"next"`
	}](t, e.do(t, http.MethodGet, "/api/events", nil))
	require.Len(t, feed.Events, 2)
	assert.Equal(t, eventlog.TypeSubmissionDeleted, feed.Events[1].Type)
	assert.Equal(t, feed.Events[1].Seq, feed.Next)
}

func TestTemplatesHandlers(t *testing.T) {
	e := newEnv(t)
	f := createForm(t, e)
	require.NoError(t, e.templates.Sync(context.Background(), []template.Template{{ID: "std", Name: "Standard", Form: form.Form{Title: "Std"}}}))

	rec := e.do(t, http.MethodPost, "/api/templates", map[string]any{"form_id": f.ID, "name": "Mine", "category": "sales"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	mine := decode[template.Template](t, rec)
	assert.Len(t, mine.Form.Elements, 6)

	list := decode[[]template.Template](t, e.do(t, http.MethodGet, "/api/templates", nil))
	assert.Len(t, list, 2)

	rec = e.do(t, http.MethodPost, "/api/templates/"+mine.ID+"/use", `{"title":"From template"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[form.Form](t, rec)
	assert.Equal(t, "From template", created.Title)
	assert.Equal(t, form.StatusDraft, created.Status)

	assert.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/templates/std/use", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodDelete, "/api/templates/std", nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/templates/"+mine.ID, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/templates", `{"name":"x"}`).Code)
}

func TestSettingsHandlers(t *testing.T) {
	e := newEnv(t)
	ws := decode[settings.Workspace](t, e.do(t, http.MethodGet, "/api/settings", nil))
	assert.Empty(t, ws.CompanyName)

	rec := e.do(t, http.MethodPut, "/api/settings", settings.Workspace{CompanyName: "Acme", WhatsAppNumber: "+1 555 0100 200"})
	require.Equal(t, http.StatusOK, rec.Code)
	ws = decode[settings.Workspace](t, e.do(t, http.MethodGet, "/api/settings", nil))
	assert.Equal(t, "Acme", ws.CompanyName)

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodPut, "/api/settings/ui.theme", `{"dark":true}`).Code)
	rec = e.do(t, http.MethodGet, "/api/settings/ui.theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dark":true}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPut, "/api/settings/ui.theme", `{dark}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPut, "/api/settings/Bad%20Key", `1`).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/settings/missing", nil).Code)
}

func TestLeadHandlers(t *testing.T) {
	e := newEnv(t)
	f := createForm(t, e)

	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/api/leads/track", map[string]string{"form_id": f.ID}).Code)
	require.NoError(t, e.settings.SaveWorkspace(context.Background(), settings.Workspace{WhatsAppNumber: "+1 555 0100 200"}))

	rec := e.do(t, http.MethodPost, "/api/leads/track", map[string]string{"form_id": f.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tracked := decode[map[string]string](t, rec)
	assert.True(t, strings.HasPrefix(tracked["whatsapp_url"], "https://wa.me/15550100200?text="))

	rec = e.do(t, http.MethodPatch, "/api/leads/"+tracked["id"], `{"status":"contacted","notes":"called"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, lead.StatusContacted, decode[lead.Lead](t, rec).Status)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPatch, "/api/leads/"+tracked["id"], `{"status":"won"}`).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/leads/nope", nil).Code)

	list := decode[[]lead.Lead](t, e.do(t, http.MethodGet, "/api/leads?status=contacted", nil))
	assert.Len(t, list, 1)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/leads?status=won", nil).Code)

	st := decode[lead.Stats](t, e.do(t, http.MethodGet, "/api/leads/stats?form_id="+f.ID, nil))
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1, st.ByStatus[lead.StatusContacted])

	draft, err := e.forms.Create(context.Background(), form.Form{Title: "Draft", Status: form.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/leads/track", map[string]string{"form_id": draft.ID}).Code)
}

func TestCompletionPageHandlers(t *testing.T) {
	e := newEnv(t)
	f := createForm(t, e)

	rec := e.do(t, http.MethodPost, "/api/completion-pages", completion.Page{FormID: f.ID, TierID: "hot", Title: "Great fit"})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[completion.Page](t, rec)

	rec = e.do(t, http.MethodPut, "/api/completion-pages/"+p.ID, completion.Page{FormID: f.ID, TierID: "hot", Title: "Book a call"})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]completion.Page](t, e.do(t, http.MethodGet, "/api/completion-pages?form_id="+f.ID, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "Book a call", list[0].Title)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPut, "/api/completion-pages/nope", completion.Page{FormID: f.ID}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/completion-pages", completion.Page{}).Code)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/completion-pages/"+p.ID, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/completion-pages", nil).Code)
}

func TestUploadLogoAndServe(t *testing.T) {
	e := newEnv(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	upload := func(name string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = fw.Write(data)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/upload/logo", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("logo.png", png)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[map[string]string](t, rec)
	assert.True(t, strings.HasPrefix(out["url"], "http://forms.test/assets/logos/"))

	rec = e.do(t, http.MethodGet, "/assets/"+out["key"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())

	assert.Equal(t, http.StatusUnsupportedMediaType, upload("notes.txt", []byte("hello")).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, upload("big.png", append(png, make([]byte, 2048)...)).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/assets/logos/missing.png", nil).Code)
}

func TestExportNeutralizesFormulas(t *testing.T) {
	e := newEnv(t)
	f := createForm(t, e)
	require.NoError(t, e.subs.Create(context.Background(), submission.Submission{
		ID: "s1", FormID: f.ID, TotalScore: 20, Passed: true, TierLabel: "Hot",
		Contact: submission.Contact{Name: "=HYPERLINK(\"http://x\")", Email: "@evil", Phone: "+1 555 0100"},
		Answers: map[string]scoring.Answer{
			"budget": {Answer: "hi", Points: 20},
			"goal":   {Answer: "-2+3", Points: 0},
		},
	}))

	rec := e.do(t, http.MethodGet, "/api/submissions/export.csv?form_id="+f.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `'=HYPERLINK("http://x")`, rows[1][2])
	assert.Equal(t, "'@evil", rows[1][3])
	assert.Equal(t, "'+1 555 0100", rows[1][4])
	assert.Equal(t, "Large", rows[1][8])
	assert.Equal(t, "'-2+3", rows[1][9])
}

type failingSubmissions struct{ submission.Store }

func (failingSubmissions) List(context.Context, submission.ListOpts) ([]submission.Submission, error) {
	return nil, errors.New("db gone")
}

func TestExportLogsListFailure(t *testing.T) {
	e := newEnv(t)
	f := createForm(t, e)
	core, logs := observer.New(zap.ErrorLevel)
	h := ExportSubmissionsHandler(e.forms, failingSubmissions{e.subs}, zap.New(core))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/submissions/export.csv?form_id="+f.ID, nil)
	h.ServeHTTP(rec, req)

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	entries := logs.FilterMessage("export_list_failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, f.ID, entries[0].ContextMap()["form_id"])
	assert.Equal(t, "db gone", entries[0].ContextMap()["error"])
}
