package domain

import (
	"github.com/atiati82/AI-CMS-sub002/internal/domain/content"
)

// Entity aliases so callers can import one types package.
type Keyword = content.Keyword
type MetricsSnapshot = content.MetricsSnapshot
type Suggestion = content.Suggestion
type Provenance = content.Provenance
type ProposedPage = content.ProposedPage
type AiContentBlock = content.AiContentBlock
type LinkingRule = content.LinkingRule
type CtaTemplate = content.CtaTemplate
type OptimizationRun = content.OptimizationRun
type RunError = content.RunError
type Page = content.Page

const (
	IntentInformational = content.IntentInformational
	IntentCommercial    = content.IntentCommercial
	IntentNavigational  = content.IntentNavigational
	IntentTransactional = content.IntentTransactional

	KeywordStatusIdea       = content.KeywordStatusIdea
	KeywordStatusAnalyzing  = content.KeywordStatusAnalyzing
	KeywordStatusPlanned    = content.KeywordStatusPlanned
	KeywordStatusInProgress = content.KeywordStatusInProgress
	KeywordStatusPublished  = content.KeywordStatusPublished
	KeywordStatusRejected   = content.KeywordStatusRejected

	EnhancementTitle          = content.EnhancementTitle
	EnhancementSummary        = content.EnhancementSummary
	EnhancementSEOTitle       = content.EnhancementSEOTitle
	EnhancementSEODescription = content.EnhancementSEODescription
	EnhancementHeroContent    = content.EnhancementHeroContent
	EnhancementSectionContent = content.EnhancementSectionContent
	EnhancementFAQ            = content.EnhancementFAQ
	EnhancementCTA            = content.EnhancementCTA
	EnhancementImagePrompt    = content.EnhancementImagePrompt
	EnhancementInternalLink   = content.EnhancementInternalLink
	EnhancementTag            = content.EnhancementTag
	EnhancementKeyword        = content.EnhancementKeyword

	SuggestionStatusPending  = content.SuggestionStatusPending
	SuggestionStatusAccepted = content.SuggestionStatusAccepted
	SuggestionStatusRejected = content.SuggestionStatusRejected
	SuggestionStatusApplied  = content.SuggestionStatusApplied

	ProposedPageStatusProposed = content.ProposedPageStatusProposed
	ProposedPageStatusApproved = content.ProposedPageStatusApproved
	ProposedPageStatusRejected = content.ProposedPageStatusRejected
	ProposedPageStatusCreated  = content.ProposedPageStatusCreated

	BlockStatusDraft     = content.BlockStatusDraft
	BlockStatusPublished = content.BlockStatusPublished
	BlockStatusArchived  = content.BlockStatusArchived

	RuleTypeKeywordMatch = content.RuleTypeKeywordMatch
	RuleTypeClusterBased = content.RuleTypeClusterBased
	RuleTypePageType     = content.RuleTypePageType
	RuleTypeManual       = content.RuleTypeManual

	CtaPositionAfterIntro = content.CtaPositionAfterIntro
	CtaPositionMidContent = content.CtaPositionMidContent
	CtaPositionBeforeFAQ  = content.CtaPositionBeforeFAQ
	CtaPositionFooter     = content.CtaPositionFooter
	CtaPositionSidebar    = content.CtaPositionSidebar

	RunTriggerManual    = content.RunTriggerManual
	RunTriggerScheduled = content.RunTriggerScheduled

	RunStatusInProgress = content.RunStatusInProgress
	RunStatusCompleted  = content.RunStatusCompleted
	RunStatusCancelled  = content.RunStatusCancelled
	RunStatusFailed     = content.RunStatusFailed

	MaxRunErrors = content.MaxRunErrors
)
