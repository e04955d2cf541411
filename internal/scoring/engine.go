package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/formbuilder/internal/form"
)

var ErrNoSuchOption = errors.New("answer does not match any option")

// Strategy turns one answer into points for a question.
type Strategy interface {
	Points(q form.Element, answer interface{}) (int, error)
}

// Engine routes by answer type to the matching Strategy. Answer types
// without a strategy (free text, email, phone...) score zero.
type Engine struct {
	strategies map[form.AnswerType]Strategy
}

type Option func(*Engine)

// WithStrategy installs or replaces the strategy for an answer type.
func WithStrategy(t form.AnswerType, s Strategy) Option {
	return func(e *Engine) { e.strategies[t] = s }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		strategies: map[form.AnswerType]Strategy{
			form.AnswerSingleChoice:   choiceStrategy{},
			form.AnswerDropdown:       choiceStrategy{},
			form.AnswerYesNo:          choiceStrategy{},
			form.AnswerMultipleChoice: multiChoiceStrategy{},
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Points(q form.Element, answer interface{}) (int, error) {
	s, ok := e.strategies[q.AnswerType]
	if !ok {
		return 0, nil
	}
	return s.Points(q, answer)
}

// Answer is what gets stored per question.
type Answer struct {
	Answer interface{} `json:"answer"`
	Points int         `json:"points"`
}

// Sheet is the scored answer set of one respondent.
type Sheet struct {
	Answers map[string]Answer `json:"answers"`
	Total   int               `json:"total"`
}

// Score sums the points of every answered question in elements. Answers for
// ids that are not questions of the form are dropped. Per-question problems
// come back keyed by question id; such answers contribute nothing.
func (e *Engine) Score(elements []form.Element, answers map[string]interface{}) (Sheet, map[string]string) {
	sheet := Sheet{Answers: map[string]Answer{}}
	problems := map[string]string{}
	for _, el := range elements {
		if !el.IsQuestion() {
			continue
		}
		a, ok := answers[el.ID]
		if !ok || IsBlank(a) {
			continue
		}
		pts, err := e.Points(el, a)
		if err != nil {
			problems[el.ID] = err.Error()
			continue
		}
		sheet.Answers[el.ID] = Answer{Answer: a, Points: pts}
		sheet.Total += pts
	}
	return sheet, problems
}

// IsBlank reports an answer that should count as not given.
func IsBlank(a interface{}) bool {
	switch v := a.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

// --- Strategies ---

type choiceStrategy struct{}

func (choiceStrategy) Points(q form.Element, answer interface{}) (int, error) {
	var s string
	switch v := answer.(type) {
	case string:
		s = v
	case bool:
		s = "no"
		if v {
			s = "yes"
		}
	default:
		return 0, fmt.Errorf("answer must be a string, got %T", answer)
	}
	o, ok := findOption(q.Options, s)
	if !ok {
		return 0, ErrNoSuchOption
	}
	return o.Points, nil
}

type multiChoiceStrategy struct{}

func (multiChoiceStrategy) Points(q form.Element, answer interface{}) (int, error) {
	picks, ok := toStringSlice(answer)
	if !ok {
		return 0, fmt.Errorf("answer must be a list of strings, got %T", answer)
	}
	total := 0
	seen := map[string]struct{}{}
	for _, p := range picks {
		o, ok := findOption(q.Options, p)
		if !ok {
			return 0, ErrNoSuchOption
		}
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		total += o.Points
	}
	return total, nil
}

// findOption matches an answer against option id, value or label, ignoring
// case and surrounding space.
func findOption(opts []form.Option, answer string) (form.Option, bool) {
	a := strings.TrimSpace(answer)
	for _, o := range opts {
		if a == o.ID || (o.Value != "" && strings.EqualFold(a, strings.TrimSpace(o.Value))) {
			return o, true
		}
	}
	for _, o := range opts {
		if strings.EqualFold(a, strings.TrimSpace(o.Label)) {
			return o, true
		}
	}
	return form.Option{}, false
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
