package book

import (
	"context"
)

// Caller identifies the acting user for mutation checks. Anonymous callers
// have ID 0 and never pass canMutate.
type Caller struct {
	ID    int64
	Staff bool
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// canMutate implements the access policy: owner or staff.
func canMutate(c Caller, b Book) bool {
	if c.Staff {
		return true
	}
	return b.OwnerID != nil && *b.OwnerID == c.ID && c.ID != 0
}

func (s *Service) List(ctx context.Context, q Query) ([]Book, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts a book owned by the caller. Ownership is force-assigned
// here so a payload-supplied owner can never stick.
func (s *Service) Create(ctx context.Context, c Caller, nb NewBook) (Book, error) {
	nb.OwnerID = c.ID
	id, err := s.repo.Create(ctx, nb)
	if err != nil {
		return Book{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c Caller, id int64, u Update) (Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if !canMutate(c, b) {
		return Book{}, ErrForbidden
	}
	if err := s.repo.Update(ctx, id, u); err != nil {
		return Book{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, c Caller, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canMutate(c, b) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
