package lead

import (
	"net/url"
	"strings"

	"github.com/mind-engage/formbuilder/internal/submission"
)

// DefaultMessage is used when the workspace has no message configured.
const DefaultMessage = "Hi! I'm {name} and I just filled in {form}."

// WhatsAppURL builds a wa.me click-to-chat link. Placeholders like {name}
// in message are replaced from vars; unknown placeholders are kept.
func WhatsAppURL(number, message string, vars map[string]string) (string, error) {
	digits := submission.PhoneDigits(number)
	if digits == "" {
		return "", ErrNoWhatsApp
	}
	if strings.TrimSpace(message) == "" {
		message = DefaultMessage
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	text := strings.NewReplacer(pairs...).Replace(message)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text), nil
}
