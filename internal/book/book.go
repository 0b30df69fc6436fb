package book

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrForbidden is returned when the caller may not mutate the book.
	// Distinct from ErrNotFound so callers can tell "exists but forbidden"
	// from "does not exist".
	ErrForbidden = errors.New("permission denied")
)

// PermissionDeniedMessage is the fixed detail message for 403 responses.
const PermissionDeniedMessage = "You do not have permission to perform this action."

// Reader is a user holding any relation to a book.
type Reader struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Book is a catalog entry augmented with query-time aggregates:
// AnnotatedLikes counts relations with like=true, PriceWithDiscount is
// price-100 when the discount flag is set, OwnerName is the owner's
// username. Rating is the denormalized mean of relation rates.
// Monetary and rating fields are fixed 2-decimal strings.
type Book struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Price             string    `json:"price"`
	PriceWithDiscount string    `json:"price_w_discount"`
	AuthorName        string    `json:"author_name"`
	AnnotatedLikes    int       `json:"annotated_likes"`
	Rating            string    `json:"rating"`
	OwnerName         *string   `json:"owner_name"`
	Readers           []Reader  `json:"readers"`
	OwnerID           *int64    `json:"-"`
	Discount          bool      `json:"-"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// Query defines filters and ordering for listing books.
type Query struct {
	Price    string // exact match, empty means no filter
	Search   string // case-insensitive substring over name OR author_name
	Ordering string // price, -price, author_name, -author_name
}

// NewBook carries the fields needed to insert a book. OwnerID is always the
// acting user; any owner supplied in a request payload is ignored upstream.
type NewBook struct {
	Name       string
	Price      string
	AuthorName string
	OwnerID    int64
}

// Update carries a partial set of mutable fields; nil means keep.
type Update struct {
	Name       *string
	Price      *string
	AuthorName *string
}
