package source

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled expressions for feed body conversion.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	listItemOpen  = regexp.MustCompile(`(?i)\s*<li(\s[^>]*)?>\s*`)
	listItemClose = regexp.MustCompile(`(?i)\s*</li>\s*`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockElements = regexp.MustCompile(`(?i)</(p|div|h[1-6]|tr|blockquote|pre|table|section|article)>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	blankLines    = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
	listGap       = regexp.MustCompile(`\n[ \t]*\n- `)
)

// HTMLToText converts a feed entry body to plain Markdown-ish text.
//
// List items become "- " prefixed lines; <br> and closing block tags become
// newlines. Script and style bodies are dropped, all other tags stripped and
// entities decoded. Runs of blank lines collapse to a single blank line.
func HTMLToText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = listItemOpen.ReplaceAllString(content, "\n- ")
	content = listItemClose.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	content = blankLines.ReplaceAllString(content, "\n\n")
	// A list directly follows the text before it.
	content = listGap.ReplaceAllString(content, "\n- ")
	return strings.TrimSpace(content)
}
