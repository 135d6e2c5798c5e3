package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"content-api/internal/model"
)

// ErrNotFound is returned when the referenced article or user does not exist.
var ErrNotFound = errors.New("not found")

// ArticleRepository defines the persistence operations for article aggregates.
// Counter and set mutations (views, likes, comments) are atomic per article:
// concurrent calls never lose an increment, a membership flip or an appended
// comment.
type ArticleRepository interface {
	// List returns up to limit articles matching the filter, most recent first.
	List(ctx context.Context, filter model.ListFilter, limit int) ([]*model.Article, error)

	// GetByID loads the full aggregate: article, like set and comment thread.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Article, error)

	// Create persists a new article and fills in its store-assigned timestamp.
	Create(ctx context.Context, article *model.Article) (*model.Article, error)

	// Update applies the present fields of the patch and returns the result.
	Update(ctx context.Context, id uuid.UUID, patch model.ArticlePatch) (*model.Article, error)

	// Delete removes the article together with its likes and comments.
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementViews bumps the view counter by one and returns the new value.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)

	// ToggleLike flips userID's membership in the article's like set.
	ToggleLike(ctx context.Context, articleID, userID uuid.UUID) (*model.LikeResult, error)

	// AddComment appends a comment to the article's thread.
	AddComment(ctx context.Context, articleID, userID uuid.UUID, text string) (*model.Comment, error)
}

// UserDirectory resolves user identifiers to their public display attributes.
type UserDirectory interface {
	// GetAuthor returns the projection for a single user.
	GetAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error)

	// GetAuthors resolves a batch of ids. Unknown ids are simply absent from
	// the result, they are not an error.
	GetAuthors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Author, error)
}
