// Package service implements the content core of the platform: the article
// aggregate operations, their authorization rules and their counter
// semantics. Identity resolution and transport framing live elsewhere; the
// service receives an already-authenticated caller id (uuid.Nil for
// anonymous callers) and already-decoded input.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"content-api/internal/model"
	"content-api/internal/repository"
)

// maxListResults caps every listing, newest first.
const maxListResults = 50

// ArticleService holds no state between calls; every operation is an
// independent unit of work against the repository.
type ArticleService struct {
	repo   repository.ArticleRepository
	users  repository.UserDirectory
	logger *zap.SugaredLogger
}

func NewArticleService(repo repository.ArticleRepository, users repository.UserDirectory, logger *zap.SugaredLogger) *ArticleService {
	return &ArticleService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// canModify is the authorization policy for author-only operations. It is
// the single place deciding whether a caller may mutate an article.
func canModify(caller uuid.UUID, article *model.Article) bool {
	return caller != uuid.Nil && caller == article.AuthorID
}

// List returns up to 50 articles matching the filter, newest first, with
// their authors resolved. An empty result is not an error.
func (s *ArticleService) List(ctx context.Context, filter model.ListFilter) ([]*model.Article, error) {
	articles, err := s.repo.List(ctx, filter, maxListResults)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.AuthorID)
	}
	authors, err := s.users.GetAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve authors: %w", err)
	}
	for _, a := range articles {
		a.Author = authors[a.AuthorID]
	}
	return articles, nil
}

// Get returns the full aggregate and, as a durable side effect of the
// successful read, bumps the view counter by exactly one. The bump is its
// own atomic store operation: repeated or concurrent Gets each land an
// increment, for any caller, with no deduplication.
func (s *ArticleService) Get(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	views, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("increment views: %w", err)
	}

	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	// The counter read may trail concurrent increments; never report less
	// than the value our own bump returned.
	if article.Views < views {
		article.Views = views
	}

	if err := s.resolveUsers(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Create persists a new article owned by the caller. Title and content must
// be non-empty after trimming; tags default to an empty set and published to
// false.
func (s *ArticleService) Create(ctx context.Context, caller uuid.UUID, fields model.NewArticle) (*model.Article, error) {
	if caller == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var missing []string
	title := strings.TrimSpace(fields.Title)
	if title == "" {
		missing = append(missing, "title")
	}
	content := strings.TrimSpace(fields.Content)
	if content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	article := &model.Article{
		ID:        uuid.New(),
		Title:     title,
		Subtitle:  fields.Subtitle,
		Content:   content,
		Tags:      normalizeTags(fields.Tags),
		AuthorID:  caller,
		Published: fields.Published,
	}

	article, err := s.repo.Create(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.logger.Infow("article created", "article_id", article.ID, "author_id", caller)

	if err := s.resolveUsers(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Update applies a partial patch to an article the caller authored. Fields
// absent from the patch stay untouched; author, views, likes, comments and
// createdAt are never altered.
func (s *ArticleService) Update(ctx context.Context, id, caller uuid.UUID, patch model.ArticlePatch) (*model.Article, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	if !canModify(caller, existing) {
		return nil, ErrForbidden
	}

	// Title and content follow the "replace only when non-empty" contract;
	// an empty value is indistinguishable from omitted for these two.
	// Subtitle, tags and published apply whenever present, zero values
	// included.
	patch.Title = trimmedOrNil(patch.Title)
	patch.Content = trimmedOrNil(patch.Content)
	if patch.Tags != nil {
		patch.Tags = normalizeTags(patch.Tags)
	}
	if patch.IsZero() {
		if err := s.resolveUsers(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	article, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	s.logger.Infow("article updated", "article_id", id, "author_id", caller)

	if err := s.resolveUsers(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete removes the aggregate, comments included, when the caller is its
// author.
func (s *ArticleService) Delete(ctx context.Context, id, caller uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get article: %w", err)
	}
	if !canModify(caller, existing) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	s.logger.Infow("article deleted", "article_id", id, "author_id", caller)
	return nil
}

// ToggleLike flips the caller's membership in the article's like set: one
// state transition per call. It returns the resulting like count and whether
// the caller now likes the article.
func (s *ArticleService) ToggleLike(ctx context.Context, id, caller uuid.UUID) (*model.LikeResult, error) {
	if caller == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	result, err := s.repo.ToggleLike(ctx, id, caller)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	return result, nil
}

// AddComment appends a comment to the article's thread and returns just that
// comment with its user resolved.
func (s *ArticleService) AddComment(ctx context.Context, id, caller uuid.UUID, text string) (*model.Comment, error) {
	if caller == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Fields: []string{"text"}}
	}

	comment, err := s.repo.AddComment(ctx, id, caller, text)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}
	s.logger.Infow("comment added", "article_id", id, "user_id", caller)

	if user, err := s.users.GetAuthor(ctx, caller); err == nil {
		comment.User = commenterProjection(user)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("resolve comment user: %w", err)
	}
	return comment, nil
}

// resolveUsers attaches display attributes to the article's author and to
// each comment's user. A missing user record degrades to a nil reference
// rather than failing the read.
func (s *ArticleService) resolveUsers(ctx context.Context, article *model.Article) error {
	ids := []uuid.UUID{article.AuthorID}
	for _, c := range article.Comments {
		ids = append(ids, c.UserID)
	}

	authors, err := s.users.GetAuthors(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve users: %w", err)
	}

	article.Author = authors[article.AuthorID]
	for i := range article.Comments {
		article.Comments[i].User = commenterProjection(authors[article.Comments[i].UserID])
	}
	return nil
}

// commenterProjection narrows an author projection to the attributes shown
// for comment users: name and avatar, no email.
func commenterProjection(a *model.Author) *model.Author {
	if a == nil {
		return nil
	}
	return &model.Author{ID: a.ID, Name: a.Name, Avatar: a.Avatar}
}

// trimmedOrNil trims the value and drops it entirely when nothing remains.
func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// normalizeTags deduplicates while preserving first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
