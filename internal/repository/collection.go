package repository

import (
	"context"

	"github.com/eslsoft/cliploop/internal/entity"
)

// CollectionRepository abstracts persistence for clip collections. List
// returns collections in store (insertion) order.
type CollectionRepository interface {
	Create(ctx context.Context, collection *entity.Collection) (*entity.Collection, error)
	Update(ctx context.Context, collection *entity.Collection) (*entity.Collection, error)
	GetByID(ctx context.Context, id string) (*entity.Collection, error)
	List(ctx context.Context) ([]entity.Collection, error)
	Delete(ctx context.Context, id string) error
}
