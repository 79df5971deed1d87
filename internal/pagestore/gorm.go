package pagestore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

// gormStore backs Store with the shared postgres instance. The reference
// deployment keeps pages in the same database as the engine, so this is the
// default wiring; anything else only has to satisfy Store.
type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormStore(db *gorm.DB, baseLog *logger.Logger) Store {
	return &gormStore{db: db, log: baseLog.With("service", "PageStore")}
}

func (s *gormStore) GetPage(ctx context.Context, id uuid.UUID) (*types.Page, error) {
	var page types.Page
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, enginerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *gormStore) GetPageByPath(ctx context.Context, path string) (*types.Page, error) {
	var page types.Page
	err := s.db.WithContext(ctx).Where("path = ?", path).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, enginerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *gormStore) ListPages(ctx context.Context) ([]*types.Page, error) {
	var pages []*types.Page
	if err := s.db.WithContext(ctx).Order("path ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (s *gormStore) UpdatePageFields(ctx context.Context, id uuid.UUID, diff FieldDiff) error {
	if len(diff) == 0 {
		return nil
	}
	updates := make(map[string]interface{}, len(diff)+1)
	for col, val := range diff {
		updates[col] = val
	}
	updates["updated_at"] = time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&types.Page{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return enginerr.ErrNotFound
	}
	return nil
}

func (s *gormStore) CreatePage(ctx context.Context, draft *types.Page) (uuid.UUID, error) {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(draft).Error; err != nil {
		return uuid.Nil, err
	}
	return draft.ID, nil
}
