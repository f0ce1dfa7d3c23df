package receipt

import (
	"net/url"
	"strings"
	"unicode"
)

// WhatsAppLink builds a click-to-chat link carrying the receipt message.
// Non-digits are stripped from number.
func WhatsAppLink(number string, doc Document) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	text := strings.ReplaceAll(url.QueryEscape(doc.Message()), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}
