package lead

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	auth "github.com/mind-engage/formbuilder/internal/auth/middleware"
	"github.com/mind-engage/formbuilder/internal/eventlog"
	"github.com/mind-engage/formbuilder/internal/form"
	"github.com/mind-engage/formbuilder/internal/settings"
	"github.com/mind-engage/formbuilder/internal/submission"
)

type (
	FormGetter interface {
		GetPublished(ctx context.Context, id string) (form.Form, error)
	}
	SubmissionGetter interface {
		Get(ctx context.Context, id string) (submission.Submission, error)
	}
	WorkspaceReader interface {
		Workspace(ctx context.Context) (settings.Workspace, error)
	}
	Events interface {
		Append(ctx context.Context, typ, key string, data any) error
	}
)

type TrackInput struct {
	FormID       string `json:"form_id"`
	SubmissionID string `json:"submission_id"`
}

// Tracker turns a respondent's WhatsApp click into a lead.
type Tracker struct {
	store       *SQLStore
	forms       FormGetter
	submissions SubmissionGetter
	workspace   WorkspaceReader
	events      Events
	log         *zap.Logger
}

func NewTracker(store *SQLStore, forms FormGetter, subs SubmissionGetter, ws WorkspaceReader, events Events, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{store: store, forms: forms, submissions: subs, workspace: ws, events: events, log: log}
}

// Track records a lead for in and returns it with its wa.me link. The
// form must be published. The submission is optional; when given it must
// belong to the form.
func (t *Tracker) Track(ctx context.Context, in TrackInput) (Lead, error) {
	f, err := t.forms.GetPublished(ctx, in.FormID)
	if err != nil {
		return Lead{}, err
	}
	ws, err := t.workspace.Workspace(ctx)
	if err != nil {
		return Lead{}, err
	}

	l := Lead{FormID: f.ID, SubmissionID: in.SubmissionID, Status: StatusNew}
	vars := map[string]string{"form": f.Title, "company": ws.CompanyName, "name": "", "tier": "", "score": ""}
	if in.SubmissionID != "" {
		sub, err := t.submissions.Get(ctx, in.SubmissionID)
		if err != nil {
			return Lead{}, err
		}
		if sub.FormID != f.ID {
			return Lead{}, ErrFormMismatch
		}
		l.TierID, l.Name, l.Phone = sub.TierID, sub.Contact.Name, sub.Contact.Phone
		vars["name"], vars["tier"], vars["score"] = sub.Contact.Name, sub.TierLabel, strconv.Itoa(sub.TotalScore)
	}

	l.WhatsAppURL, err = WhatsAppURL(ws.WhatsAppNumber, ws.WhatsAppMessage, vars)
	if err != nil {
		return Lead{}, err
	}
	l, err = t.store.Create(ctx, l)
	if err != nil {
		return Lead{}, err
	}
	if t.events != nil {
		if err := t.events.Append(ctx, eventlog.TypeLeadTracked, l.ID, map[string]any{
			"form_id": l.FormID, "submission_id": l.SubmissionID, "tier_id": l.TierID,
		}); err != nil {
			t.log.Error("event_append_failed", zap.String("lead_id", l.ID), zap.Error(err))
		}
	}
	return l, nil
}

// Update patches a lead and records the change.
func (t *Tracker) Update(ctx context.Context, id string, p Patch) (Lead, error) {
	l, err := t.store.Update(ctx, id, p)
	if err != nil {
		return Lead{}, err
	}
	if t.events != nil {
		if err := t.events.Append(ctx, eventlog.TypeLeadUpdated, l.ID, map[string]any{
			"status": l.Status,
			"by":     auth.SubjectFromContext(ctx),
		}); err != nil {
			t.log.Error("event_append_failed", zap.String("lead_id", l.ID), zap.Error(err))
		}
	}
	return l, nil
}
