package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/neighborly/engage/internal/model"
)

// ErrUserNotFound is returned when a joined display user cannot be found.
var ErrUserNotFound = errors.New("user not found")

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// GetSummary fetches the display shape of a user for joining onto
// mutation responses.
func (r *userRepository) GetSummary(ctx context.Context, userID int64) (*model.ActorSummary, error) {
	query := `
		SELECT id, username, display_name, avatar_url
		FROM users
		WHERE id = $1
	`
	var summary model.ActorSummary
	err := r.db.GetContext(ctx, &summary, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user summary: %w", err)
	}
	return &summary, nil
}
