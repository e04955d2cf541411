// Package lead records WhatsApp click-throughs from completed forms and
// tracks their follow-up status.
package lead

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

var (
	ErrNotFound      = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid lead status")
	ErrNoWhatsApp    = errors.New("workspace has no whatsapp number")
	ErrFormMismatch  = errors.New("submission does not belong to form")
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusConverted, StatusLost:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

type Lead struct {
	ID           string `json:"id"`
	FormID       string `json:"form_id"`
	SubmissionID string `json:"submission_id,omitempty"`
	TierID       string `json:"tier_id,omitempty"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Status       Status `json:"status"`
	Notes        string `json:"notes"`
	WhatsAppURL  string `json:"whatsapp_url"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// Patch is a partial update; nil fields are left alone.
type Patch struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type ListOpts struct {
	FormID string
	Status Status
	Limit  int
	Offset int
}

// Stats counts leads of a form (or all forms) by status and by tier.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	ByTier   map[string]int `json:"by_tier"`
}
