package submission

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auth "github.com/mind-engage/formbuilder/internal/auth/middleware"
	"github.com/mind-engage/formbuilder/internal/completion"
	"github.com/mind-engage/formbuilder/internal/eventlog"
	"github.com/mind-engage/formbuilder/internal/form"
	"github.com/mind-engage/formbuilder/internal/notify"
	"github.com/mind-engage/formbuilder/internal/scoring"
)

// Input is a respondent's payload.
type Input struct {
	FormID  string                 `json:"form_id"`
	Answers map[string]interface{} `json:"answers"`
	Contact Contact                `json:"contact"`
}

// Result is returned to the respondent after submit.
type Result struct {
	Submission     Submission       `json:"submission"`
	Outcome        scoring.Outcome  `json:"outcome"`
	CompletionPage *completion.Page `json:"completion_page,omitempty"`
}

type Events interface {
	Append(ctx context.Context, typ, key string, data any) error
}

type CompletionResolver interface {
	Resolve(ctx context.Context, formID, tierID string) (*completion.Page, error)
}

type Notifier interface {
	Notify(ctx context.Context, lead notify.QualifiedLead) error
}

type Service struct {
	forms       form.Store
	store       Store
	engine      *scoring.Engine
	completions CompletionResolver
	events      Events
	notifier    Notifier
	log         *zap.Logger

	// background runs best-effort work after the response is decided.
	background func(func())
}

type ServiceOption func(*Service)

func WithEvents(e Events) ServiceOption     { return func(s *Service) { s.events = e } }
func WithNotifier(n Notifier) ServiceOption { return func(s *Service) { s.notifier = n } }
func WithCompletions(c CompletionResolver) ServiceOption {
	return func(s *Service) { s.completions = c }
}
func WithLogger(l *zap.Logger) ServiceOption { return func(s *Service) { s.log = l } }

// WithSyncBackground runs background work inline; tests use it.
func WithSyncBackground() ServiceOption {
	return func(s *Service) { s.background = func(f func()) { f() } }
}

func NewService(forms form.Store, store Store, engine *scoring.Engine, opts ...ServiceOption) *Service {
	s := &Service{
		forms:      forms,
		store:      store,
		engine:     engine,
		log:        zap.NewNop(),
		background: func(f func()) { go f() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit validates, scores and stores a submission for a published form.
// Points are always recomputed from the stored form.
func (s *Service) Submit(ctx context.Context, in Input) (Result, error) {
	f, err := s.forms.GetPublished(ctx, in.FormID)
	if err != nil {
		return Result{}, err
	}
	if in.Answers == nil {
		in.Answers = map[string]interface{}{}
	}
	in.Contact = Contact{
		Name:  strings.TrimSpace(in.Contact.Name),
		Email: strings.TrimSpace(in.Contact.Email),
		Phone: strings.TrimSpace(in.Contact.Phone),
	}

	fields := ValidateContact(in.Contact)
	for k, v := range ValidateAnswers(f.Elements, in.Answers) {
		fields[k] = v
	}
	sheet, problems := s.engine.Score(f.Elements, in.Answers)
	for qid, msg := range problems {
		if _, taken := fields["answers."+qid]; !taken {
			fields["answers."+qid] = msg
		}
	}
	if len(fields) > 0 {
		return Result{}, &ValidationError{Fields: fields}
	}

	outcome := scoring.Evaluate(sheet.Total, scoring.RulesFor(f))
	sub := Submission{
		ID:         uuid.NewString(),
		FormID:     f.ID,
		Answers:    sheet.Answers,
		TotalScore: sheet.Total,
		Passed:     outcome.Passed,
		Contact:    in.Contact,
		CreatedAt:  time.Now().Unix(),
	}
	if outcome.Tier != nil {
		sub.TierID, sub.TierLabel = outcome.Tier.ID, outcome.Tier.Label
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return Result{}, err
	}

	res := Result{Submission: sub, Outcome: outcome}
	if s.completions != nil {
		page, err := s.completions.Resolve(ctx, f.ID, sub.TierID)
		if err != nil {
			s.log.Warn("completion_page_lookup_failed", zap.String("form_id", f.ID), zap.Error(err))
		}
		res.CompletionPage = page
	}

	s.afterSubmit(f, sub)
	return res, nil
}

// afterSubmit records the event and notifies about qualified leads. Failures
// are logged and never reach the respondent.
func (s *Service) afterSubmit(f form.Form, sub Submission) {
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if s.events != nil {
			err := s.events.Append(ctx, eventlog.TypeSubmissionCreated, sub.ID, map[string]any{
				"form_id": sub.FormID, "total_score": sub.TotalScore, "passed": sub.Passed, "tier_id": sub.TierID,
			})
			if err != nil {
				s.log.Error("event_append_failed", zap.String("submission_id", sub.ID), zap.Error(err))
			}
		}
		if s.notifier != nil && sub.Passed {
			err := s.notifier.Notify(ctx, notify.QualifiedLead{
				FormID: f.ID, FormTitle: f.Title, SubmissionID: sub.ID,
				Name: sub.Contact.Name, Email: sub.Contact.Email, Phone: sub.Contact.Phone,
				Score: sub.TotalScore, TierLabel: sub.TierLabel,
			})
			if err != nil {
				s.log.Error("lead_notify_failed", zap.String("submission_id", sub.ID), zap.Error(err))
			}
		}
	})
}

// Delete removes a submission and records the deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.events != nil {
		if err := s.events.Append(ctx, eventlog.TypeSubmissionDeleted, id, map[string]any{
			"by": auth.SubjectFromContext(ctx),
		}); err != nil {
			s.log.Error("event_append_failed", zap.String("submission_id", id), zap.Error(err))
		}
	}
	return nil
}
