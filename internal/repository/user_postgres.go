package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"content-api/internal/model"
)

// userPostgresDirectory resolves user ids against the users table.
type userPostgresDirectory struct {
	db DB
}

// NewUserPostgresDirectory creates the PostgreSQL-backed user directory.
func NewUserPostgresDirectory(db DB) UserDirectory {
	return &userPostgresDirectory{db: db}
}

func (d *userPostgresDirectory) GetAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	query := `SELECT id, name, email, avatar FROM users WHERE id = $1`

	var author model.Author
	err := d.db.QueryRow(ctx, query, id).Scan(&author.ID, &author.Name, &author.Email, &author.Avatar)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user failed: %w", err)
	}
	return &author, nil
}

func (d *userPostgresDirectory) GetAuthors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Author, error) {
	authors := make(map[uuid.UUID]*model.Author, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	query := `SELECT id, name, email, avatar FROM users WHERE id = ANY($1)`

	rows, err := d.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query users failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var author model.Author
		if err := rows.Scan(&author.ID, &author.Name, &author.Email, &author.Avatar); err != nil {
			return nil, fmt.Errorf("scan user failed: %w", err)
		}
		authors[author.ID] = &author
	}
	return authors, rows.Err()
}
