package linking

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// segment is one tokenizer unit of the page content. Non-text segments pass
// through byte-for-byte; text segments are the only places a link may be
// inserted, and carry the flags that make a span eligible or not.
type segment struct {
	raw        string
	isText     bool
	inAnchor   bool
	anchorHref string
	inHeading  bool
	// tag carries the element name for start/end tag segments, empty
	// otherwise. isEnd marks end tags.
	tag   string
	isEnd bool
	// offset of the first byte of this segment's text in the concatenation
	// of all text segments, used for the min-distance cap.
	textOffset int
}

var headingTags = map[string]struct{}{
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
}

// tokenize splits HTML content into segments. It never rewrites what the
// tokenizer hands back, so rebuilding an untouched segment list reproduces
// the input bytes exactly.
func tokenize(content string) ([]segment, error) {
	z := html.NewTokenizer(strings.NewReader(content))

	var segs []segment
	var anchorDepth, headingDepth int
	var anchorHref string
	textOffset := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				return segs, nil
			}
			return nil, z.Err()
		}
		raw := string(z.Raw())

		switch tt {
		case html.TextToken:
			segs = append(segs, segment{
				raw:        raw,
				isText:     true,
				inAnchor:   anchorDepth > 0,
				anchorHref: anchorHref,
				inHeading:  headingDepth > 0,
				textOffset: textOffset,
			})
			textOffset += len(raw)
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tag == "a" {
				anchorDepth++
				anchorHref = tagHref(z, hasAttr)
			}
			if _, ok := headingTags[tag]; ok {
				headingDepth++
			}
			segs = append(segs, segment{raw: raw, tag: tag})
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "a" && anchorDepth > 0 {
				anchorDepth--
				if anchorDepth == 0 {
					anchorHref = ""
				}
			}
			if _, ok := headingTags[tag]; ok && headingDepth > 0 {
				headingDepth--
			}
			segs = append(segs, segment{raw: raw, tag: tag, isEnd: true})
		default:
			segs = append(segs, segment{raw: raw})
		}
	}
}

func tagHref(z *html.Tokenizer, hasAttr bool) string {
	for hasAttr {
		key, val, more := z.TagAttr()
		if string(key) == "href" {
			return strings.TrimSpace(string(val))
		}
		hasAttr = more
	}
	return ""
}

// rebuild concatenates segment raws back into a document.
func rebuild(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.raw)
	}
	return b.String()
}

// existingAnchorPositions returns the global text position of each anchor
// already pointing at one of the rule targets, one entry per anchor. The
// matcher charges them against the per-page cap and the min-distance rule so
// a re-run cannot squeeze in links a single pass would have refused.
func existingAnchorPositions(segs []segment, targets map[string]struct{}) []int {
	var out []int
	pending := false
	for _, seg := range segs {
		if !seg.isText && seg.tag == "a" && !seg.isEnd {
			pending = true
			continue
		}
		if pending && seg.isText && seg.inAnchor {
			if _, ok := targets[seg.anchorHref]; ok {
				out = append(out, seg.textOffset)
			}
			pending = false
		}
	}
	return out
}

// countAnchorsTo counts existing anchor elements pointing at target, so a
// re-run charges them against the rule's occurrence budget.
func countAnchorsTo(content, target string) int {
	z := html.NewTokenizer(strings.NewReader(content))
	count := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return count
		}
		if tt != html.StartTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "a" {
			continue
		}
		if tagHref(z, hasAttr) == target {
			count++
		}
	}
}

// balanced verifies the rewritten document still closes every anchor and
// heading it opens. The matcher refuses output that fails this check.
func balanced(content string) bool {
	z := html.NewTokenizer(strings.NewReader(content))
	depths := map[string]int{}
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return false
			}
			for _, d := range depths {
				if d != 0 {
					return false
				}
			}
			return true
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "a" || isHeading(tag) {
				depths[tag]++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "a" || isHeading(tag) {
				depths[tag]--
				if depths[tag] < 0 {
					return false
				}
			}
		}
	}
}

func isHeading(tag string) bool {
	_, ok := headingTags[tag]
	return ok
}
