package linking

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/atiati82/AI-CMS-sub002/internal/config"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

// PageContext identifies the page being rewritten so rules can be filtered
// against it.
type PageContext struct {
	Path     string
	PageType string
	Cluster  string
}

// AppliedLink reports one anchor the matcher inserted.
type AppliedLink struct {
	RuleID         string `json:"rule_id"`
	TriggerPattern string `json:"trigger_pattern"`
	TargetPagePath string `json:"target_page_path"`
	AnchorText     string `json:"anchor_text"`
}

// Matcher mechanically inserts internal links into page content according to
// the active rule set. It operates on a tokenized view of the HTML so it can
// never split or unbalance a tag.
type Matcher struct {
	log             *logger.Logger
	maxLinksPerPage int
	minLinkDistance int
}

func NewMatcher(cfg config.Linking, log *logger.Logger) *Matcher {
	return &Matcher{
		log:             log.With("service", "LinkMatcher"),
		maxLinksPerPage: cfg.MaxLinksPerPage,
		minLinkDistance: cfg.MinLinkDistance,
	}
}

type insertion struct {
	segIdx    int
	start     int
	end       int
	replace   string
	globalPos int
	applied   AppliedLink
}

// ApplyLinks scans content for rule triggers and inserts anchors, enforcing
// the per-rule occurrence cap, the per-page link cap and the minimum distance
// between inserted links. Re-running over already-linked content is a no-op:
// text inside anchors is ineligible, and existing anchors to rule targets are
// charged against the rule budget, the page cap and the min-distance rule.
func (m *Matcher) ApplyLinks(content string, pageCtx PageContext, rules []types.LinkingRule) (string, []AppliedLink, error) {
	if strings.TrimSpace(content) == "" || len(rules) == 0 {
		return content, nil, nil
	}

	segs, err := tokenize(content)
	if err != nil {
		return content, nil, fmt.Errorf("tokenize content: %w", err)
	}

	candidates := m.eligibleRules(rules, pageCtx)
	if len(candidates) == 0 {
		return content, nil, nil
	}

	targets := map[string]struct{}{}
	for _, r := range candidates {
		targets[r.TargetPagePath] = struct{}{}
	}
	existing := existingAnchorPositions(segs, targets)

	var accepted []insertion
	claimed := map[int][][2]int{}

	for _, rule := range candidates {
		budget := rule.MaxOccurrences - countAnchorsTo(content, rule.TargetPagePath)
		if budget <= 0 {
			continue
		}
		pattern := strings.TrimSpace(rule.TriggerPattern)

		for i := range segs {
			if budget <= 0 || len(accepted)+len(existing) >= m.maxLinksPerPage {
				break
			}
			seg := &segs[i]
			if !seg.isText || seg.inAnchor || seg.inHeading {
				continue
			}

			from := 0
			for budget > 0 && len(accepted)+len(existing) < m.maxLinksPerPage {
				start, end := indexFold(seg.raw, pattern, from)
				if start < 0 {
					break
				}
				_, size := utf8.DecodeRuneInString(seg.raw[start:])
				from = start + size

				if !wordBoundary(seg.raw, start, end) {
					continue
				}
				if overlaps(claimed[i], start, end) {
					continue
				}
				globalPos := seg.textOffset + start
				if m.tooClose(accepted, existing, globalPos) {
					continue
				}

				matched := seg.raw[start:end]
				anchorText := strings.TrimSpace(rule.AnchorText)
				var inner string
				if anchorText == "" {
					anchorText = matched
					inner = matched
				} else {
					inner = html.EscapeString(anchorText)
				}
				replace := fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(rule.TargetPagePath), inner)

				claimed[i] = append(claimed[i], [2]int{start, end})
				accepted = append(accepted, insertion{
					segIdx:    i,
					start:     start,
					end:       end,
					replace:   replace,
					globalPos: globalPos,
					applied: AppliedLink{
						RuleID:         rule.ID.String(),
						TriggerPattern: rule.TriggerPattern,
						TargetPagePath: rule.TargetPagePath,
						AnchorText:     anchorText,
					},
				})
				budget--
			}
		}
	}

	if len(accepted) == 0 {
		return content, nil, nil
	}

	rewritten := applyInsertions(segs, accepted)
	if !balanced(rewritten) {
		m.log.Error("link rewrite produced unbalanced markup, keeping original content",
			"page_path", pageCtx.Path, "links", len(accepted))
		return content, nil, &enginerr.ValidationError{Field: "content", Reason: "rewrite unbalanced markup"}
	}

	sort.SliceStable(accepted, func(a, b int) bool { return accepted[a].globalPos < accepted[b].globalPos })
	out := make([]AppliedLink, 0, len(accepted))
	for _, ins := range accepted {
		out = append(out, ins.applied)
	}
	return rewritten, out, nil
}

// eligibleRules drops inactive, self-targeting and malformed rules, then
// orders the rest by priority then trigger specificity so overlapping
// matches resolve the same way on every run.
func (m *Matcher) eligibleRules(rules []types.LinkingRule, pageCtx PageContext) []types.LinkingRule {
	out := make([]types.LinkingRule, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if r.TargetPagePath == pageCtx.Path {
			continue
		}
		if err := validateRule(r); err != nil {
			m.log.Warn("skipping malformed linking rule", "rule_id", r.ID.String(), "error", err)
			continue
		}
		if r.RuleType == types.RuleTypeClusterBased && r.TriggerPattern == "" {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		if len(out[i].TriggerPattern) != len(out[j].TriggerPattern) {
			return len(out[i].TriggerPattern) > len(out[j].TriggerPattern)
		}
		return out[i].TargetPagePath < out[j].TargetPagePath
	})
	return out
}

func validateRule(r types.LinkingRule) error {
	trigger := strings.TrimSpace(r.TriggerPattern)
	if trigger == "" {
		return &enginerr.ValidationError{Field: "trigger_pattern", Reason: "empty"}
	}
	if strings.ContainsAny(trigger, "<>") {
		return &enginerr.ValidationError{Field: "trigger_pattern", Reason: "markup not allowed"}
	}
	if strings.TrimSpace(r.TargetPagePath) == "" {
		return &enginerr.ValidationError{Field: "target_page_path", Reason: "empty"}
	}
	if r.MaxOccurrences < 0 {
		return &enginerr.ValidationError{Field: "max_occurrences", Reason: "negative"}
	}
	return nil
}

func (m *Matcher) tooClose(accepted []insertion, existing []int, globalPos int) bool {
	for _, p := range existing {
		d := globalPos - p
		if d < 0 {
			d = -d
		}
		if d < m.minLinkDistance {
			return true
		}
	}
	for _, a := range accepted {
		d := globalPos - a.globalPos
		if d < 0 {
			d = -d
		}
		if d < m.minLinkDistance {
			return true
		}
	}
	return false
}

// indexFold finds the first case-insensitive match of pattern in s at or
// after from, returning byte offsets into s itself. Searching a lowercased
// copy would drift for runes whose lowercase form has a different byte
// length.
func indexFold(s, pattern string, from int) (int, int) {
	if pattern == "" {
		return -1, -1
	}
	for i := from; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		if n, ok := foldPrefix(s[i:], pattern); ok {
			return i, i + n
		}
		i += size
	}
	return -1, -1
}

func foldPrefix(s, pattern string) (int, bool) {
	n := 0
	for _, pr := range pattern {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 {
			return 0, false
		}
		if unicode.ToLower(r) != unicode.ToLower(pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

func overlaps(claimed [][2]int, start, end int) bool {
	for _, c := range claimed {
		if start < c[1] && end > c[0] {
			return true
		}
	}
	return false
}

// wordBoundary rejects matches glued to surrounding letters or digits, so a
// trigger "ore" does not link inside "restore".
func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func applyInsertions(segs []segment, accepted []insertion) string {
	bySeg := map[int][]insertion{}
	for _, ins := range accepted {
		bySeg[ins.segIdx] = append(bySeg[ins.segIdx], ins)
	}
	for idx, list := range bySeg {
		sort.SliceStable(list, func(a, b int) bool { return list[a].start > list[b].start })
		raw := segs[idx].raw
		for _, ins := range list {
			raw = raw[:ins.start] + ins.replace + raw[ins.end:]
		}
		segs[idx].raw = raw
	}
	return rebuild(segs)
}
