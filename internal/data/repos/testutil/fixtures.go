package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
)

func SeedPage(tb testing.TB, ctx context.Context, tx *gorm.DB, path string) *types.Page {
	tb.Helper()
	p := &types.Page{
		ID:    uuid.New(),
		Path:  path,
		Title: "page " + path,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed page: %v", err)
	}
	return p
}

func SeedKeyword(tb testing.TB, ctx context.Context, tx *gorm.DB, phrase string, pageID *uuid.UUID) *types.Keyword {
	tb.Helper()
	k := &types.Keyword{
		ID:              uuid.New(),
		Phrase:          phrase,
		SearchIntent:    types.IntentInformational,
		DifficultyScore: 40,
		VolumeEstimate:  300,
		RelevanceScore:  70,
		Status:          types.KeywordStatusIdea,
		PageID:          pageID,
	}
	if err := tx.WithContext(ctx).Create(k).Error; err != nil {
		tb.Fatalf("seed keyword: %v", err)
	}
	return k
}

func SeedSuggestion(tb testing.TB, ctx context.Context, tx *gorm.DB, pageID uuid.UUID, enhancementType, status string) *types.Suggestion {
	tb.Helper()
	s := &types.Suggestion{
		ID:              uuid.New(),
		PageID:          pageID,
		EnhancementType: enhancementType,
		SuggestedValue:  "suggested",
		Confidence:      50,
		Status:          status,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed suggestion: %v", err)
	}
	return s
}

func SeedBlock(tb testing.TB, ctx context.Context, tx *gorm.DB, pageID uuid.UUID, hook, status string) *types.AiContentBlock {
	tb.Helper()
	b := &types.AiContentBlock{
		ID:          uuid.New(),
		PageID:      pageID,
		Hook:        hook,
		BlockType:   "faq",
		ContentHTML: "<p>block</p>",
		Status:      status,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed block: %v", err)
	}
	return b
}
