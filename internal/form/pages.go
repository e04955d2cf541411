package form

// GroupElementsIntoPages splits elements into pages at page breaks for the
// editor view. A break only closes a page that already holds something, so
// leading, trailing and repeated breaks never produce empty pages. Breaks
// themselves are not part of any page.
//
// Legacy input (no element tags at all) yields one question per page.
func GroupElementsIntoPages(elements []Element) [][]Element {
	if IsLegacy(elements) {
		pages := make([][]Element, 0, len(elements))
		for _, e := range elements {
			pages = append(pages, []Element{legacyElementToQuestion(e)})
		}
		return pages
	}

	var (
		pages [][]Element
		cur   []Element
	)
	for _, e := range elements {
		if e.IsPageBreak() {
			if len(cur) > 0 {
				pages = append(pages, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, e)
	}
	if len(cur) > 0 {
		pages = append(pages, cur)
	}
	return pages
}

// GroupQuestionsByPages is the public renderer's view: the same page split as
// GroupElementsIntoPages, reduced to question elements, with pages that hold
// no question dropped.
func GroupQuestionsByPages(elements []Element) [][]Element {
	var out [][]Element
	for _, page := range GroupElementsIntoPages(elements) {
		var qs []Element
		for _, e := range page {
			if e.IsQuestion() {
				qs = append(qs, e)
			}
		}
		if len(qs) > 0 {
			out = append(out, qs)
		}
	}
	return out
}

// QuestionPages keeps whole pages (headings and text included) but only those
// that contain at least one question.
func QuestionPages(elements []Element) [][]Element {
	var out [][]Element
	for _, page := range GroupElementsIntoPages(elements) {
		for _, e := range page {
			if e.IsQuestion() {
				out = append(out, page)
				break
			}
		}
	}
	return out
}

// PageCount is the number of pages a respondent walks through.
func PageCount(elements []Element) int {
	return len(GroupQuestionsByPages(elements))
}

// IsLegacy reports whether elements came from the flat question format:
// a non-empty list with no question, heading or page break tags. "text" is
// both an element tag and a legacy answer kind; a text block carries content
// while a legacy free-text question carries only its wording.
func IsLegacy(elements []Element) bool {
	if len(elements) == 0 {
		return false
	}
	for _, e := range elements {
		switch e.Type {
		case ElementQuestion, ElementHeading, ElementPageBreak:
			return false
		case ElementText:
			if e.Content != "" {
				return false
			}
		}
	}
	return true
}

// FromLegacy converts flat questions to elements, separating consecutive
// questions with page breaks so each lands on its own page.
func FromLegacy(questions []LegacyQuestion) []Element {
	out := make([]Element, 0, 2*len(questions))
	for i, q := range questions {
		if i > 0 {
			out = append(out, Element{ID: "break-" + q.ID, Type: ElementPageBreak})
		}
		out = append(out, Element{
			ID:         q.ID,
			Type:       ElementQuestion,
			Text:       q.Text,
			AnswerType: AnswerType(q.Type),
			Options:    q.Options,
			Required:   q.Required,
		})
	}
	return out
}

// legacyElementToQuestion reads an untagged entry as a legacy question, where
// "type" held the answer kind.
func legacyElementToQuestion(e Element) Element {
	q := e
	if q.AnswerType == "" {
		q.AnswerType = AnswerType(e.Type)
	}
	q.Type = ElementQuestion
	return q
}

// Normalize rewrites legacy storage into the element format in place and
// fills element defaults.
func (f *Form) Normalize() {
	switch {
	case len(f.Elements) == 0 && len(f.Questions) > 0:
		f.Elements = FromLegacy(f.Questions)
	case IsLegacy(f.Elements):
		qs := make([]LegacyQuestion, 0, len(f.Elements))
		for _, e := range f.Elements {
			q := legacyElementToQuestion(e)
			qs = append(qs, LegacyQuestion{ID: q.ID, Text: q.Text, Type: string(q.AnswerType), Options: q.Options, Required: q.Required})
		}
		f.Elements = FromLegacy(qs)
	}
	f.Questions = nil
	for i := range f.Elements {
		if f.Elements[i].Type == ElementHeading && f.Elements[i].Level == 0 {
			f.Elements[i].Level = 2
		}
	}
	if f.Status == "" {
		f.Status = StatusDraft
	}
}
