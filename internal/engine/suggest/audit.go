package suggest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field-weakness thresholds. A page failing one of these gets a suggestion
// for that slot.
const (
	minSEOTitleLen       = 20
	maxSEOTitleLen       = 60
	minSEODescriptionLen = 70
	maxSEODescriptionLen = 155
	minWordCount         = 300
	minInternalLinks     = 3
)

// pageAudit is the content-quality snapshot the generator works from.
type pageAudit struct {
	wordCount      int
	internalLinks  int
	hasFAQ         bool
	firstParagraph string
	headings       []string
}

// auditContent measures rendered body HTML. A parse failure returns the zero
// audit: every signal reads as weak, which at worst regenerates suggestions a
// reviewer can reject.
func auditContent(bodyHTML string) pageAudit {
	var audit pageAudit
	if strings.TrimSpace(bodyHTML) == "" {
		return audit
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML))
	if err != nil {
		return audit
	}

	doc.Find("script,noscript,style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.TrimSpace(doc.Text())
	audit.wordCount = len(strings.Fields(text))

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "/") {
			audit.internalLinks++
		}
	})

	doc.Find("h1,h2,h3").Each(func(i int, s *goquery.Selection) {
		heading := strings.TrimSpace(s.Text())
		if heading == "" {
			return
		}
		audit.headings = append(audit.headings, heading)
		lower := strings.ToLower(heading)
		if strings.Contains(lower, "faq") || strings.Contains(lower, "frequently asked") {
			audit.hasFAQ = true
		}
	})

	audit.firstParagraph = strings.TrimSpace(doc.Find("p").First().Text())
	return audit
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-")
}
