// Package htmltext derives plain-text titles and previews from article html.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// PreviewLength is the number of characters kept in a preview
	PreviewLength = 140

	// FallbackTitleWords is how many words make a title when the html has no heading
	FallbackTitleWords = 12

	ellipsis = "…"
)

// Title returns the text of the first <h1>, else the first <h2>, else the
// first words of the plain text. It returns "" for blank html.
func Title(html string) string {
	doc, err := parse(html)
	if err != nil {
		return ""
	}

	for _, tag := range []string{"h1", "h2"} {
		if heading := doc.Find(tag).First(); heading.Length() > 0 {
			if text := collapse(heading.Text()); text != "" {
				return text
			}
		}
	}

	words := strings.Fields(plainText(doc.Selection))
	if len(words) > FallbackTitleWords {
		words = words[:FallbackTitleWords]
	}
	return strings.Join(words, " ")
}

// Preview returns the plain text of html truncated to PreviewLength
// characters, with an ellipsis appended when text was cut.
func Preview(html string) string {
	return Truncate(PlainText(html), PreviewLength)
}

// PlainText strips markup, treating every tag boundary as whitespace
func PlainText(html string) string {
	doc, err := parse(html)
	if err != nil {
		return ""
	}
	return plainText(doc.Selection)
}

// Truncate cuts s to n runes and appends an ellipsis if anything was dropped
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + ellipsis
}

func parse(html string) (*goquery.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, errEmpty
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func plainText(sel *goquery.Selection) string {
	var parts []string
	collectText(sel, &parts)
	return collapse(strings.Join(parts, " "))
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			*parts = append(*parts, node.Text())
		case "script", "style", "#comment":
		default:
			collectText(node, parts)
		}
	})
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
