// Package notify delivers email about new qualified leads.
package notify

import (
	"context"
	"time"
)

// SendRequest is one outgoing email.
type SendRequest struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender sends email through a provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
