// Package markup flattens the light HTML the assistant service sometimes
// embeds in replies into plain text suitable for a terminal or a Telegram
// message.
package markup

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blankLines = regexp.MustCompile(`\n{2,}`)

// Flatten strips markup from an assistant reply. Plain text passes
// through unchanged. List items become dashed lines, line breaks and
// paragraph boundaries become newlines, and script/style noise is
// dropped entirely.
func Flatten(reply string) string {
	if !strings.Contains(reply, "<") {
		return reply
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(reply))
	if err != nil {
		return reply
	}

	doc.Find("script, style, iframe").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n- ")
	})
	doc.Find("p, div, h1, h2, h3, h4, ul, ol, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Find("body").Text()
	text = blankLines.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
