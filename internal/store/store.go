// Package store provides access to the remote product collection.
package store

import (
	"context"

	"github.com/abgdnv/checklist/internal/model"
)

// ProductStore is the remote collection resource holding all durable product state.
// Implementations never retry. Failures are TransportError (request failed or unparsable
// response) or ErrNotFound for an update/remove target that is absent remotely.
type ProductStore interface {
	// ListAll returns every product in the remote store's order.
	ListAll(ctx context.Context) ([]model.Product, error)

	// Create adds a product and returns it with its store-assigned id and checked=false.
	Create(ctx context.Context, draft model.Draft) (*model.Product, error)

	// Update applies a partial update and returns the full updated record.
	// Returns ErrNotFound if no product exists with the given id.
	Update(ctx context.Context, id string, patch model.Patch) (*model.Product, error)

	// Remove deletes a product.
	// Returns ErrNotFound if no product exists with the given id.
	Remove(ctx context.Context, id string) error
}
