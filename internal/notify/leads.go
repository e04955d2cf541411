package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"
)

// QualifiedLead is what an operator needs to follow up on a passing submission.
type QualifiedLead struct {
	FormID       string
	FormTitle    string
	SubmissionID string
	Name         string
	Email        string
	Phone        string
	Score        int
	TierLabel    string
}

// Recipients returns the address to notify for the current workspace; empty
// means notifications are off.
type Recipients func(ctx context.Context) (string, error)

// LeadNotifier emails the workspace contact about qualified leads.
type LeadNotifier struct {
	sender     Sender
	recipients Recipients
	log        *zap.Logger
}

func NewLeadNotifier(sender Sender, recipients Recipients, log *zap.Logger) *LeadNotifier {
	return &LeadNotifier{sender: sender, recipients: recipients, log: log}
}

var leadTmpl = template.Must(template.New("lead").Parse(`<h2>New qualified lead for {{.FormTitle}}</h2>
<p><strong>{{.Name}}</strong>{{if .TierLabel}} ({{.TierLabel}}){{end}} scored {{.Score}}.</p>
<ul>
{{if .Email}}<li>Email: {{.Email}}</li>{{end}}
{{if .Phone}}<li>Phone: {{.Phone}}</li>{{end}}
</ul>
<p>Submission {{.SubmissionID}}</p>`))

// Notify sends one email per qualified lead. It is a no-op when no recipient
// is configured.
func (n *LeadNotifier) Notify(ctx context.Context, lead QualifiedLead) error {
	to, err := n.recipients(ctx)
	if err != nil {
		return fmt.Errorf("lookup recipients: %w", err)
	}
	to = strings.TrimSpace(to)
	if to == "" {
		n.log.Debug("lead_notify_skipped", zap.String("submission_id", lead.SubmissionID))
		return nil
	}
	var buf bytes.Buffer
	if err := leadTmpl.Execute(&buf, lead); err != nil {
		return err
	}
	_, err = n.sender.Send(ctx, SendRequest{
		To:      []string{to},
		Subject: fmt.Sprintf("Qualified lead: %s", lead.Name),
		HTML:    buf.String(),
		ReplyTo: lead.Email,
	})
	return err
}
