package pagestore

import (
	"context"

	"github.com/google/uuid"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
)

// FieldDiff is the concrete set of page fields a write changed, column name
// to new value. The lifecycle manager returns it for audit logging.
type FieldDiff map[string]string

// Store is the engine's view of the page store. Page rendering, templating
// and the rest of the CMS live behind this boundary.
type Store interface {
	GetPage(ctx context.Context, id uuid.UUID) (*types.Page, error)
	GetPageByPath(ctx context.Context, path string) (*types.Page, error)
	ListPages(ctx context.Context) ([]*types.Page, error)
	UpdatePageFields(ctx context.Context, id uuid.UUID, diff FieldDiff) error
	CreatePage(ctx context.Context, draft *types.Page) (uuid.UUID, error)
}
