package book

import (
	"context"
)

// Repository defines the contract for book storage. List and GetByID return
// books with their query-time aggregates and readers attached; List must
// execute a bounded number of queries regardless of result size.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, nb NewBook) (int64, error)
	Update(ctx context.Context, id int64, u Update) error
	Delete(ctx context.Context, id int64) error
}
