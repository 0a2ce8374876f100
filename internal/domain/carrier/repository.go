package carrier

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a carrier id has no stored record.
var ErrNotFound = errors.New("carrier not found")

// Repository abstracts carrier persistence. Implementations own ordering:
// List returns records sorted by canonicalized name ascending.
type Repository interface {
	List(ctx context.Context) ([]Carrier, error)
	Get(ctx context.Context, id string) (Carrier, error)
	Create(ctx context.Context, c Carrier) error
	Update(ctx context.Context, c Carrier) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
