package relation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore/internal/book"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Upsert runs in one transaction: verify the book, get-or-create the
// (user, book) relation, merge the supplied fields, and when the patch
// carries a rate, refresh books.rating from the relation set. The rating is
// a cache of the relation rates, so last-writer-wins on concurrent updates
// is acceptable: any later recomputation restores the invariant.
func (r *PostgresRepo) Upsert(ctx context.Context, userID, bookID int64, p Patch) (Relation, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return Relation{}, err
	}
	defer tx.Rollback(timeoutCtx)

	var exists int
	if err := tx.QueryRow(timeoutCtx, `SELECT 1 FROM books WHERE id = $1`, bookID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Relation{}, book.ErrNotFound
		}
		return Relation{}, err
	}

	const getOrCreateSQL = `
		INSERT INTO user_book_relations (user_id, book_id, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (user_id, book_id) DO NOTHING
	`
	if _, err := tx.Exec(timeoutCtx, getOrCreateSQL, userID, bookID); err != nil {
		return Relation{}, err
	}

	const mergeSQL = `
		UPDATE user_book_relations
		SET liked = COALESCE($3, liked),
		    in_bookmarks = COALESCE($4, in_bookmarks),
		    rate = COALESCE($5, rate),
		    comments = COALESCE($6, comments),
		    updated_at = now()
		WHERE user_id = $1 AND book_id = $2
		RETURNING id, user_id, book_id, liked, in_bookmarks, rate, comments, created_at, updated_at
	`
	var rel Relation
	err = tx.QueryRow(timeoutCtx, mergeSQL, userID, bookID, p.Like, p.InBookmarks, p.Rate, p.Comments).Scan(
		&rel.ID, &rel.UserID, &rel.BookID, &rel.Like, &rel.InBookmarks, &rel.Rate, &rel.Comments,
		&rel.CreatedAt, &rel.UpdatedAt,
	)
	if err != nil {
		return Relation{}, err
	}

	if p.Rate != nil {
		// ROUND(numeric, 2) rounds half away from zero, i.e. half-up for
		// the 1-5 rates involved. No rated relations means 0.
		const refreshRatingSQL = `
			UPDATE books
			SET rating = COALESCE((
				SELECT ROUND(AVG(rate)::numeric, 2)
				FROM user_book_relations
				WHERE book_id = $1 AND rate IS NOT NULL
			), 0),
			    updated_at = now()
			WHERE id = $1
		`
		if _, err := tx.Exec(timeoutCtx, refreshRatingSQL, bookID); err != nil {
			return Relation{}, err
		}
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return Relation{}, err
	}
	return rel, nil
}

func (r *PostgresRepo) Get(ctx context.Context, userID, bookID int64) (Relation, error) {
	const query = `
		SELECT id, user_id, book_id, liked, in_bookmarks, rate, comments, created_at, updated_at
		FROM user_book_relations
		WHERE user_id = $1 AND book_id = $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rel Relation
	err := r.db.QueryRow(timeoutCtx, query, userID, bookID).Scan(
		&rel.ID, &rel.UserID, &rel.BookID, &rel.Like, &rel.InBookmarks, &rel.Rate, &rel.Comments,
		&rel.CreatedAt, &rel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Relation{}, ErrNotFound
		}
		return Relation{}, err
	}
	return rel, nil
}
