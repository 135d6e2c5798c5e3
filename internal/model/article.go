package model

import (
	"time"

	"github.com/google/uuid"
)

// Author is the public projection of a user attached to article output.
// Email is populated for article authors only; comment users carry just
// name and avatar.
type Author struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Avatar string    `json:"avatar,omitempty"`
}

// Article is the aggregate root. Comments belong to it exclusively and are
// created and deleted with it.
type Article struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Subtitle  string      `json:"subtitle,omitempty"`
	Content   string      `json:"content"`
	Tags      []string    `json:"tags"`
	AuthorID  uuid.UUID   `json:"-"`
	Author    *Author     `json:"author"`
	Published bool        `json:"published"`
	Views     int64       `json:"views"`
	Likes     []uuid.UUID `json:"likes"`
	Comments  []Comment   `json:"comments,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Comment is append-only: nothing in this service edits or removes one once
// it is written.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	User      *Author   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewArticle carries the fields a caller supplies at creation time.
type NewArticle struct {
	Title     string
	Subtitle  string
	Content   string
	Tags      []string
	Published bool
}

// ArticlePatch is a partial update. A nil field means "leave untouched";
// a present field replaces, including present-but-zero values for Subtitle,
// Tags and Published. Pointer fields keep "omitted" distinguishable from
// "explicitly cleared".
type ArticlePatch struct {
	Title     *string
	Subtitle  *string
	Content   *string
	Tags      []string
	Published *bool
}

// IsZero reports whether the patch changes nothing.
func (p ArticlePatch) IsZero() bool {
	return p.Title == nil && p.Subtitle == nil && p.Content == nil &&
		p.Tags == nil && p.Published == nil
}

// ListFilter narrows a listing. Zero-value Tag and nil Author match
// everything; Published is always applied.
type ListFilter struct {
	Tag       string
	Author    *uuid.UUID
	Published bool
}

// LikeResult is the outcome of a like toggle: the article's like count and
// whether the caller likes it now.
type LikeResult struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}
