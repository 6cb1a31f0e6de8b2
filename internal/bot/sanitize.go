package bot

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`</?([a-zA-Z0-9]+)[^>]*>`)

// Tags Telegram accepts in HTML parse mode. Everything else the assistant
// may emit is stripped before sending.
var allowedTags = map[string]struct{}{
	"i":    {},
	"u":    {},
	"s":    {},
	"b":    {},
	"code": {},
	"pre":  {},
	"a":    {},
}

func sanitizeHTML(text string) string {
	return tagRe.ReplaceAllStringFunc(text, func(tag string) string {
		name := strings.ToLower(tagRe.FindStringSubmatch(tag)[1])
		if _, ok := allowedTags[name]; ok {
			return tag
		}
		return ""
	})
}
