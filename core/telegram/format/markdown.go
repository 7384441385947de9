package format

import "regexp"

const mdV2Specials = "_*[]()~`>#+-=|{}.!"

var mdV2Escaper = regexp.MustCompile("[" + regexp.QuoteMeta(mdV2Specials) + "]")

// EscapeMarkdown escapes MarkdownV2 special characters in text so it can be
// embedded verbatim into a MarkdownV2 message.
func EscapeMarkdown(text string) string {
	return mdV2Escaper.ReplaceAllString(text, `\${0}`)
}
