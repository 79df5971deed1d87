package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
)

// Outline is the stored shape of a proposed page plan.
type Outline struct {
	Headings []string `json:"headings"`
	Notes    string   `json:"notes,omitempty"`
}

// GenerateProposedPage turns one unserved keyword into a proposed_page row.
// Returns (nil, nil) when the keyword is already served or already has an open
// proposal. Pages are never materialized here; that requires an explicit
// approval through the lifecycle manager.
func (g *Generator) GenerateProposedPage(ctx context.Context, kw *types.Keyword) (*types.ProposedPage, error) {
	if kw == nil || kw.Served() {
		return nil, nil
	}
	open, err := g.proposed.ExistsOpenForKeyword(ctx, kw.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, nil
	}

	slug, err := g.uniqueSlug(ctx, kw.Phrase)
	if err != nil {
		return nil, err
	}

	outline, err := g.buildOutline(ctx, kw)
	if err != nil {
		return nil, err
	}
	rawOutline, err := json.Marshal(outline)
	if err != nil {
		return nil, err
	}

	p := &types.ProposedPage{
		KeywordID:     kw.ID,
		TargetKeyword: kw.Phrase,
		Title:         titleCase(kw.Phrase),
		Slug:          slug,
		Outline:       datatypes.JSON(rawOutline),
		Cluster:       kw.Cluster,
		Status:        types.ProposedPageStatusProposed,
	}
	saved, err := g.proposed.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	g.log.Info("proposed page created",
		"proposed_page_id", saved.ID.String(),
		"keyword", kw.Phrase,
		"slug", slug)
	return saved, nil
}

func (g *Generator) uniqueSlug(ctx context.Context, phrase string) (string, error) {
	base := slugify(phrase)
	if base == "" {
		base = "page"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := g.proposed.SlugTaken(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// buildOutline sketches the section list for a proposed page. Sibling keywords
// in the same cluster each get a heading, then the standard closing sections.
func (g *Generator) buildOutline(ctx context.Context, kw *types.Keyword) (Outline, error) {
	headings := []string{"Overview", titleCase(kw.Phrase)}
	if kw.Cluster != "" {
		siblings, err := g.keywords.ListByCluster(ctx, kw.Cluster)
		if err != nil {
			return Outline{}, err
		}
		for _, sib := range siblings {
			if sib.ID == kw.ID {
				continue
			}
			headings = append(headings, titleCase(sib.Phrase))
			if len(headings) >= 6 {
				break
			}
		}
	}
	headings = append(headings, "FAQ", "Next Steps")
	return Outline{Headings: headings}, nil
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
