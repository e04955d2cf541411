package submission

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mind-engage/formbuilder/internal/form"
	"github.com/mind-engage/formbuilder/internal/scoring"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9\s\-().]+$`)
)

const (
	minNameLen   = 2
	maxNameLen   = 100
	minPhoneDigs = 7
	maxPhoneDigs = 20
	maxEmailLen  = 254
)

// ValidateContact checks the contact block. A name and at least one of email
// or phone are required.
func ValidateContact(c Contact) map[string]string {
	errs := map[string]string{}
	name := strings.TrimSpace(c.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		errs["contact.name"] = "name is required"
	case n < minNameLen:
		errs["contact.name"] = "name is too short"
	case n > maxNameLen:
		errs["contact.name"] = "name is too long"
	}

	email := strings.TrimSpace(c.Email)
	phone := strings.TrimSpace(c.Phone)
	if email == "" && phone == "" {
		errs["contact.email"] = "email or phone is required"
	}
	if email != "" && (len(email) > maxEmailLen || !emailRe.MatchString(email)) {
		errs["contact.email"] = "email is not valid"
	}
	if phone != "" {
		if !phoneRe.MatchString(phone) || !validPhoneLen(phone) {
			errs["contact.phone"] = "phone is not valid"
		}
	}
	return errs
}

// PhoneDigits strips everything but digits.
func PhoneDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// ValidateAnswers reports required questions left blank and answers of the
// wrong kind for email/phone/number questions.
func ValidateAnswers(elements []form.Element, answers map[string]interface{}) map[string]string {
	errs := map[string]string{}
	for _, e := range elements {
		if !e.IsQuestion() {
			continue
		}
		key := "answers." + e.ID
		a, ok := answers[e.ID]
		if !ok || scoring.IsBlank(a) {
			if e.Required {
				errs[key] = "this question is required"
			}
			continue
		}
		s, isString := a.(string)
		switch e.AnswerType {
		case form.AnswerEmail:
			if !isString || !emailRe.MatchString(strings.TrimSpace(s)) {
				errs[key] = "email is not valid"
			}
		case form.AnswerPhone:
			if !isString || !phoneRe.MatchString(strings.TrimSpace(s)) || !validPhoneLen(s) {
				errs[key] = "phone is not valid"
			}
		case form.AnswerNumber:
			if _, isNum := a.(float64); !isNum && !(isString && isNumeric(s)) {
				errs[key] = "must be a number"
			}
		}
	}
	return errs
}

func validPhoneLen(s string) bool {
	n := len(PhoneDigits(s))
	return n >= minPhoneDigs && n <= maxPhoneDigs
}

var numRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

func isNumeric(s string) bool { return numRe.MatchString(strings.TrimSpace(s)) }
