package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/domain"
)

// ProductCatalog is the catalog collaborator. The engine only reads
// visibility facts and category membership from it, always in batches so
// the cost of a feed page stays at one call.
type ProductCatalog interface {
	VisibilityFacts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.ProductFacts, error)
	ProductIDsByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error)
}
