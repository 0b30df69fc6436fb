package relation

import (
	"context"
)

// Repository defines the contract for relation storage. Upsert performs
// get-or-create plus a merge of the supplied fields, and recomputes the
// book's denormalized rating when the patch carries a rate.
type Repository interface {
	Upsert(ctx context.Context, userID, bookID int64, p Patch) (Relation, error)
	Get(ctx context.Context, userID, bookID int64) (Relation, error)
}
