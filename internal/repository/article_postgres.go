package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"content-api/internal/model"
)

// DB is the subset of pgxpool.Pool the repositories use; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const fkViolation = "23503"

// articlePostgresRepo implements ArticleRepository with PostgreSQL
type articlePostgresRepo struct {
	db DB
}

// NewArticlePostgresRepository creates the PostgreSQL-backed repository.
func NewArticlePostgresRepository(db DB) ArticleRepository {
	return &articlePostgresRepo{db: db}
}

const articleColumns = "id, title, subtitle, content, tags, author_id, published, views, created_at"

func scanArticle(row pgx.Row) (*model.Article, error) {
	var a model.Article
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Subtitle,
		&a.Content,
		&a.Tags,
		&a.AuthorID,
		&a.Published,
		&a.Views,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns up to limit matching articles, newest first.
func (r *articlePostgresRepo) List(ctx context.Context, filter model.ListFilter, limit int) ([]*model.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE published = $1
		  AND ($2 = '' OR $2 = ANY(tags))
		  AND ($3::uuid IS NULL OR author_id = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`
	rows, err := r.db.Query(ctx, query, filter.Published, filter.Tag, filter.Author, limit)
	if err != nil {
		return nil, fmt.Errorf("query articles failed: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article failed: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read articles failed: %w", err)
	}
	return articles, nil
}

// GetByID loads the aggregate: the article row, its like set and its comment
// thread in creation order.
func (r *articlePostgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	article, err := scanArticle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query article failed: %w", err)
	}

	if article.Likes, err = r.likesFor(ctx, id); err != nil {
		return nil, err
	}
	if article.Comments, err = r.commentsFor(ctx, id); err != nil {
		return nil, err
	}
	return article, nil
}

func (r *articlePostgresRepo) likesFor(ctx context.Context, articleID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM article_likes WHERE article_id = $1`, articleID)
	if err != nil {
		return nil, fmt.Errorf("query likes failed: %w", err)
	}
	defer rows.Close()

	likes := []uuid.UUID{}
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan like failed: %w", err)
		}
		likes = append(likes, userID)
	}
	return likes, rows.Err()
}

func (r *articlePostgresRepo) commentsFor(ctx context.Context, articleID uuid.UUID) ([]model.Comment, error) {
	// seq preserves insertion order even when created_at collides.
	query := `
		SELECT id, user_id, body, created_at
		FROM comments
		WHERE article_id = $1
		ORDER BY seq
	`
	rows, err := r.db.Query(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("query comments failed: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment failed: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Create persists a new article. views starts at zero and created_at is
// assigned by the store.
func (r *articlePostgresRepo) Create(ctx context.Context, article *model.Article) (*model.Article, error) {
	query := `
		INSERT INTO articles (id, title, subtitle, content, tags, author_id, published, views, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, CURRENT_TIMESTAMP)
		RETURNING views, created_at
	`
	err := r.db.QueryRow(ctx, query,
		article.ID,
		article.Title,
		article.Subtitle,
		article.Content,
		article.Tags,
		article.AuthorID,
		article.Published,
	).Scan(&article.Views, &article.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create article failed: %w", err)
	}

	article.Likes = []uuid.UUID{}
	article.Comments = nil
	return article, nil
}

// Update writes only the fields present in the patch. author_id, views and
// created_at are never part of the SET clause.
func (r *articlePostgresRepo) Update(ctx context.Context, id uuid.UUID, patch model.ArticlePatch) (*model.Article, error) {
	var set []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Subtitle != nil {
		add("subtitle", *patch.Subtitle)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Tags != nil {
		add("tags", patch.Tags)
	}
	if patch.Published != nil {
		add("published", *patch.Published)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE articles SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), articleColumns,
	)

	article, err := scanArticle(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update article failed: %w", err)
	}

	if article.Likes, err = r.likesFor(ctx, id); err != nil {
		return nil, err
	}
	if article.Comments, err = r.commentsFor(ctx, id); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete removes the article; likes and comments go with it via
// ON DELETE CASCADE, so no partial aggregate is ever observable.
func (r *articlePostgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the counter in a single statement so N concurrent
// calls always land N increments.
func (r *articlePostgresRepo) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	var views int64
	err := r.db.QueryRow(ctx,
		`UPDATE articles SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment views failed: %w", err)
	}
	return views, nil
}

// ToggleLike flips the caller's membership in the like set inside one
// transaction. Different users only ever touch their own row, so concurrent
// toggles by different users cannot clobber each other; a same-user race
// stays last-write-wins.
func (r *articlePostgresRepo) ToggleLike(ctx context.Context, articleID, userID uuid.UUID) (*model.LikeResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin toggle like failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)`, articleID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check article failed: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	removed, err := tx.Exec(ctx,
		`DELETE FROM article_likes WHERE article_id = $1 AND user_id = $2`, articleID, userID)
	if err != nil {
		return nil, fmt.Errorf("remove like failed: %w", err)
	}

	liked := removed.RowsAffected() == 0
	if liked {
		_, err = tx.Exec(ctx,
			`INSERT INTO article_likes (article_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			articleID, userID)
		if err != nil {
			return nil, fmt.Errorf("add like failed: %w", err)
		}
	}

	var likes int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM article_likes WHERE article_id = $1`, articleID).Scan(&likes)
	if err != nil {
		return nil, fmt.Errorf("count likes failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit toggle like failed: %w", err)
	}
	return &model.LikeResult{Likes: likes, Liked: liked}, nil
}

// AddComment appends in a single INSERT, never read-modify-write, so
// concurrent appends cannot lose a comment.
func (r *articlePostgresRepo) AddComment(ctx context.Context, articleID, userID uuid.UUID, text string) (*model.Comment, error) {
	comment := model.Comment{
		ID:     uuid.New(),
		UserID: userID,
		Text:   text,
	}
	query := `
		INSERT INTO comments (id, article_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, comment.ID, articleID, userID, text).Scan(&comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("add comment failed: %w", err)
	}
	return &comment, nil
}
