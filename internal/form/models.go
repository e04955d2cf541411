package form

type ElementType string

const (
	ElementQuestion  ElementType = "question"
	ElementHeading   ElementType = "heading"
	ElementText      ElementType = "text"
	ElementPageBreak ElementType = "pageBreak"
)

// AnswerType is the kind of input a question collects.
type AnswerType string

const (
	AnswerSingleChoice   AnswerType = "single_choice"
	AnswerMultipleChoice AnswerType = "multiple_choice"
	AnswerYesNo          AnswerType = "yes_no"
	AnswerDropdown       AnswerType = "dropdown"
	AnswerText           AnswerType = "text"
	AnswerTextarea       AnswerType = "textarea"
	AnswerEmail          AnswerType = "email"
	AnswerPhone          AnswerType = "phone"
	AnswerNumber         AnswerType = "number"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Option struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Value  string `json:"value,omitempty"`
	Points int    `json:"points"`
}

// Style is the per-element presentation override picked in the editor.
type Style struct {
	Align  string `json:"align,omitempty"`
	Color  string `json:"color,omitempty"`
	Size   string `json:"size,omitempty"`
	Weight string `json:"weight,omitempty"`
}

// Element is one entry of a form's ordered element list. Type selects which
// of the remaining fields are meaningful.
type Element struct {
	ID   string      `json:"id"`
	Type ElementType `json:"type"`

	// question, heading
	Text string `json:"text,omitempty"`

	// question
	AnswerType  AnswerType `json:"answer_type,omitempty"`
	Options     []Option   `json:"options,omitempty"`
	Required    bool       `json:"required,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	HelpText    string     `json:"help_text,omitempty"`

	// heading
	Level int `json:"level,omitempty"`

	// text (markdown)
	Content     string `json:"content,omitempty"`
	ContentHTML string `json:"content_html,omitempty"` // filled for public rendering only

	// heading, text
	Style *Style `json:"style,omitempty"`

	// pageBreak
	Label    string `json:"label,omitempty"`
	ShowLine bool   `json:"show_line,omitempty"`
}

func (e Element) IsQuestion() bool  { return e.Type == ElementQuestion }
func (e Element) IsPageBreak() bool { return e.Type == ElementPageBreak }

// LegacyQuestion is the pre-element storage format: a flat list of questions
// with the answer kind in "type" and no page structure.
type LegacyQuestion struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Options  []Option `json:"options,omitempty"`
	Required bool     `json:"required,omitempty"`
}

type ScoreTier struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	MinScore    int    `json:"min_score"`
	MaxScore    int    `json:"max_score"`
	Description string `json:"description,omitempty"`
	Qualifies   bool   `json:"qualifies"`
	Color       string `json:"color,omitempty"`
}

type Design struct {
	PrimaryColor    string `json:"primary_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	FontFamily      string `json:"font_family,omitempty"`
	LogoURL         string `json:"logo_url,omitempty"`
	ButtonStyle     string `json:"button_style,omitempty"`
}

type Welcome struct {
	Enabled    bool   `json:"enabled"`
	Title      string `json:"title,omitempty"`
	Subtitle   string `json:"subtitle,omitempty"`
	ButtonText string `json:"button_text,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

type Completion struct {
	Title       string `json:"title,omitempty"`
	MessagePass string `json:"message_pass,omitempty"`
	MessageFail string `json:"message_fail,omitempty"`
	ShowScore   bool   `json:"show_score"`
}

type Form struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Status       Status      `json:"status"`
	Elements     []Element   `json:"elements"`
	PassingScore int         `json:"passing_score"`
	UseTiers     bool        `json:"use_tiers"`
	Tiers        []ScoreTier `json:"tiers,omitempty"`
	Design       Design      `json:"design"`
	Welcome      Welcome     `json:"welcome"`
	Completion   Completion  `json:"completion"`

	// Legacy forms carry questions instead of elements until normalized.
	Questions []LegacyQuestion `json:"questions,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty"`
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

type Summary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Status        Status `json:"status"`
	QuestionCount int    `json:"question_count"`
	UpdatedAt     int64  `json:"updated_at"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title        *string      `json:"title,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Status       *Status      `json:"status,omitempty"`
	Elements     *[]Element   `json:"elements,omitempty"`
	PassingScore *int         `json:"passing_score,omitempty"`
	UseTiers     *bool        `json:"use_tiers,omitempty"`
	Tiers        *[]ScoreTier `json:"tiers,omitempty"`
	Design       *Design      `json:"design,omitempty"`
	Welcome      *Welcome     `json:"welcome,omitempty"`
	Completion   *Completion  `json:"completion,omitempty"`
}

// Apply copies the set fields of p onto f.
func (p Patch) Apply(f *Form) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Elements != nil {
		f.Elements = *p.Elements
		f.Questions = nil
	}
	if p.PassingScore != nil {
		f.PassingScore = *p.PassingScore
	}
	if p.UseTiers != nil {
		f.UseTiers = *p.UseTiers
	}
	if p.Tiers != nil {
		f.Tiers = *p.Tiers
	}
	if p.Design != nil {
		f.Design = *p.Design
	}
	if p.Welcome != nil {
		f.Welcome = *p.Welcome
	}
	if p.Completion != nil {
		f.Completion = *p.Completion
	}
}
