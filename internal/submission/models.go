package submission

import (
	"errors"
	"sort"
	"strings"

	"github.com/mind-engage/formbuilder/internal/scoring"
)

var ErrNotFound = errors.New("submission not found")

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Submission struct {
	ID         string                    `json:"id"`
	FormID     string                    `json:"form_id"`
	Answers    map[string]scoring.Answer `json:"answers"`
	TotalScore int                       `json:"total_score"`
	Passed     bool                      `json:"passed"`
	TierID     string                    `json:"tier_id,omitempty"`
	TierLabel  string                    `json:"tier_label,omitempty"`
	Contact    Contact                   `json:"contact"`
	CreatedAt  int64                     `json:"created_at"`
}

type ListOpts struct {
	FormID string
	Passed *bool
	Limit  int
	Offset int
}

// ValidationError carries per-field messages, keyed "contact.email",
// "answers.<question id>" and so on.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
