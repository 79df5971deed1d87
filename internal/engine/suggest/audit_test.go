package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditContent(t *testing.T) {
	body := `
<h1>Roof Repair</h1>
<p>We repair roofs across the region. Call us today.</p>
<h2>Pricing</h2>
<p>See our <a href="/pricing">pricing page</a> or <a href="https://example.com">partner site</a>.</p>
<h2>Frequently Asked Questions</h2>
<script>track();</script>`

	audit := auditContent(body)
	assert.Equal(t, 1, audit.internalLinks, "external links do not count")
	assert.True(t, audit.hasFAQ)
	assert.Equal(t, "We repair roofs across the region. Call us today.", audit.firstParagraph)
	assert.Equal(t, []string{"Roof Repair", "Pricing", "Frequently Asked Questions"}, audit.headings)
	assert.NotContains(t, audit.headings, "track();")
	assert.Greater(t, audit.wordCount, 10)
	assert.Less(t, audit.wordCount, 30)
}

func TestAuditContentEmpty(t *testing.T) {
	audit := auditContent("   ")
	assert.Zero(t, audit.wordCount)
	assert.Zero(t, audit.internalLinks)
	assert.False(t, audit.hasFAQ)
}
