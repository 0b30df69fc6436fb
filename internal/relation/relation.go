package relation

import (
	"errors"
	"time"
)

var (
	// ErrRateOutOfRange is returned when a rate is outside the 1-5 range.
	// The relation is left untouched.
	ErrRateOutOfRange = errors.New("rate must be between 1 and 5")

	// ErrNotFound is returned on reads for a (user, book) pair that has
	// never been written.
	ErrNotFound = errors.New("relation not found")
)

// Relation is the per-(user, book) record of like/bookmark/rating/comment
// state. It is created lazily in empty form on the first write for a pair.
type Relation struct {
	ID          int64     `json:"-"`
	UserID      int64     `json:"-"`
	BookID      int64     `json:"book"`
	Like        bool      `json:"like"`
	InBookmarks bool      `json:"in_bookmarks"`
	Rate        *int      `json:"rate"`
	Comments    string    `json:"comments"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Patch carries the supplied subset of relation fields; nil means keep the
// prior value.
type Patch struct {
	Like        *bool
	InBookmarks *bool
	Rate        *int
	Comments    *string
}
