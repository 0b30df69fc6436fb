package book

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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

// annotatedSelect computes the per-row aggregates in a single grouped query.
// Grouping by b.id is enough for the books columns (primary key); the owner
// username joins in the GROUP BY explicitly. Casting NUMERIC(·,2) to text
// keeps the fixed two-decimal wire format. price - 100 may go negative for
// discounted books under 100: no floor, matching the pricing policy.
const annotatedSelect = `
	SELECT b.id, b.name, b.price::text,
	       (CASE WHEN b.discount THEN b.price - 100 ELSE b.price END)::numeric(8,2)::text AS price_w_discount,
	       b.author_name,
	       COUNT(r.id) FILTER (WHERE r.liked) AS annotated_likes,
	       b.rating::text,
	       u.username AS owner_name,
	       b.owner_id, b.discount,
	       b.created_at, b.updated_at
	FROM books b
	LEFT JOIN user_book_relations r ON r.book_id = b.id
	LEFT JOIN users u ON u.id = b.owner_id
`

// ILIKE treats %, _ and \ as pattern syntax; escape them so search terms
// match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func searchPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// orderClause maps the ordering parameter onto a SQL ORDER BY. A leading
// minus flips the direction. Unknown fields fall back to the default id
// ordering; id is always the tie-break so equal-order rows stay stable.
func orderClause(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")

	var col string
	switch field {
	case "price":
		col = "b.price"
	case "author_name":
		col = "b.author_name"
	default:
		return "ORDER BY b.id ASC"
	}

	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, b.id ASC", col, dir)
}

// List returns the filtered, annotated, ordered books. Exactly two queries
// run regardless of the result size: the grouped select and one batched
// readers lookup.
func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, error) {
	clauses := []string{}
	args := []any{}
	argn := 1

	if q.Price != "" {
		clauses = append(clauses, fmt.Sprintf("b.price = $%d::numeric", argn))
		args = append(args, q.Price)
		argn++
	}

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(b.name ILIKE $%d OR b.author_name ILIKE $%d)", argn, argn+1))
		pattern := searchPattern(q.Search)
		args = append(args, pattern, pattern)
		argn += 2
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	dataSQL := fmt.Sprintf("%s %s GROUP BY b.id, u.username %s", annotatedSelect, where, orderClause(q.Ordering))

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	ids := []int64{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachReaders(ctx, books, ids); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	query := annotatedSelect + " WHERE b.id = $1 GROUP BY b.id, u.username"

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, id)
	if err != nil {
		return Book{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Book{}, err
		}
		return Book{}, ErrNotFound
	}
	b, err := scanBook(rows)
	if err != nil {
		return Book{}, err
	}
	rows.Close()

	books := []Book{b}
	if err := r.attachReaders(ctx, books, []int64{b.ID}); err != nil {
		return Book{}, err
	}
	return books[0], nil
}

func scanBook(rows pgx.Rows) (Book, error) {
	var b Book
	err := rows.Scan(
		&b.ID, &b.Name, &b.Price, &b.PriceWithDiscount, &b.AuthorName,
		&b.AnnotatedLikes, &b.Rating, &b.OwnerName, &b.OwnerID, &b.Discount,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return Book{}, err
	}
	b.Readers = []Reader{}
	return b, nil
}

// attachReaders merges every book's reader list with one batched query.
func (r *PostgresRepo) attachReaders(ctx context.Context, books []Book, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	const query = `
		SELECT r.book_id, u.first_name, u.last_name
		FROM user_book_relations r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = ANY($1)
		ORDER BY r.book_id, r.id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	readersByBook := make(map[int64][]Reader)
	for rows.Next() {
		var bookID int64
		var reader Reader
		if err := rows.Scan(&bookID, &reader.FirstName, &reader.LastName); err != nil {
			return err
		}
		readersByBook[bookID] = append(readersByBook[bookID], reader)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range books {
		if readers, ok := readersByBook[books[i].ID]; ok {
			books[i].Readers = readers
		}
	}
	return nil
}

func (r *PostgresRepo) Create(ctx context.Context, nb NewBook) (int64, error) {
	const query = `
		INSERT INTO books (name, price, author_name, owner_id, created_at, updated_at)
		VALUES ($1, $2::numeric, $3, $4, now(), now())
		RETURNING id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.QueryRow(timeoutCtx, query, nb.Name, nb.Price, nb.AuthorName, nb.OwnerID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, u Update) error {
	const query = `
		UPDATE books
		SET name = COALESCE($2, name),
		    price = COALESCE($3::numeric, price),
		    author_name = COALESCE($4, author_name),
		    updated_at = now()
		WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, query, id, u.Name, u.Price, u.AuthorName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
