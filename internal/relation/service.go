package relation

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Apply merges the patch into the caller's relation to the book, creating
// the relation on first touch. Out-of-range rates are rejected before any
// write so the prior rate survives.
func (s *Service) Apply(ctx context.Context, userID, bookID int64, p Patch) (Relation, error) {
	if p.Rate != nil && (*p.Rate < 1 || *p.Rate > 5) {
		return Relation{}, ErrRateOutOfRange
	}
	return s.repo.Upsert(ctx, userID, bookID, p)
}

// Get returns the caller's relation to the book without creating one.
func (s *Service) Get(ctx context.Context, userID, bookID int64) (Relation, error) {
	return s.repo.Get(ctx, userID, bookID)
}
