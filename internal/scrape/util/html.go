package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// UserAgent is sent on every outbound request.
const UserAgent = "JobRadar/1.0 (+local)"

// HTMLToText flattens an HTML fragment into whitespace-normalized text so
// the keyword heuristics never match inside tag names or attributes.
func HTMLToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	return CleanText(doc.Text())
}
