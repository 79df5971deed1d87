package content

import (
	"context"
	"testing"

	"github.com/atiati82/AI-CMS-sub002/internal/data/repos/testutil"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
)

func TestUpsertPendingRefreshesExistingSlot(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSuggestionRepo(tx, testutil.Logger(t))

	page := testutil.SeedPage(t, ctx, tx, "/services/upsert")

	first, err := repo.UpsertPending(ctx, &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementSEOTitle,
		FieldName:       "seo_title",
		SuggestedValue:  "first value",
		Confidence:      60,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := repo.UpsertPending(ctx, &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementSEOTitle,
		FieldName:       "seo_title",
		SuggestedValue:  "second value",
		Confidence:      80,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected slot refresh, got new row %s vs %s", second.ID, first.ID)
	}
	if second.SuggestedValue != "second value" || second.Confidence != 80 {
		t.Fatalf("slot not refreshed: %+v", second)
	}

	var count int64
	if err := tx.Model(&types.Suggestion{}).
		Where("page_id = ? AND enhancement_type = ? AND status = ?",
			page.ID, types.EnhancementSEOTitle, types.SuggestionStatusPending).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one pending row per slot, got %d", count)
	}
}

func TestUpsertPendingIgnoresResolvedRows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSuggestionRepo(tx, testutil.Logger(t))

	page := testutil.SeedPage(t, ctx, tx, "/services/resolved")
	rejected := testutil.SeedSuggestion(t, ctx, tx, page.ID, types.EnhancementFAQ, types.SuggestionStatusRejected)

	fresh, err := repo.UpsertPending(ctx, &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementFAQ,
		SuggestedValue:  "new faq",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if fresh.ID == rejected.ID {
		t.Fatal("resolved row must not be reused as the pending slot")
	}
	if fresh.Status != types.SuggestionStatusPending {
		t.Fatalf("expected pending, got %s", fresh.Status)
	}
}

func TestUpdateStatusIfIsConditional(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSuggestionRepo(tx, testutil.Logger(t))

	page := testutil.SeedPage(t, ctx, tx, "/services/cas")
	s := testutil.SeedSuggestion(t, ctx, tx, page.ID, types.EnhancementSEOTitle, types.SuggestionStatusPending)

	moved, err := repo.UpdateStatusIf(ctx, s.ID,
		[]string{types.SuggestionStatusPending},
		map[string]interface{}{"status": types.SuggestionStatusAccepted})
	if err != nil {
		t.Fatalf("first move: %v", err)
	}
	if !moved {
		t.Fatal("expected pending -> accepted to land")
	}

	moved, err = repo.UpdateStatusIf(ctx, s.ID,
		[]string{types.SuggestionStatusPending},
		map[string]interface{}{"status": types.SuggestionStatusRejected})
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if moved {
		t.Fatal("row already left pending; conditional update must miss")
	}

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != types.SuggestionStatusAccepted {
		t.Fatalf("expected accepted, got %s", got.Status)
	}
}
