package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"iq-test-service/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// sqlxUserRepository implements UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

// CreateUser inserts a new user into the database.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (ID, GOOGLE_ID, EMAIL, NAME, PROFILE_PICTURE_URL, CREATED_AT, UPDATED_AT)
	          VALUES (:ID, :GOOGLE_ID, :EMAIL, :NAME, :PROFILE_PICTURE_URL, :CREATED_AT, :UPDATED_AT)`

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByGoogleID retrieves a user by their Google ID.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE GOOGLE_ID = :GOOGLE_ID AND DELETED_AT IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetUserByGoogleID: %w", err)
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &user, map[string]interface{}{"GOOGLE_ID": googleID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their internal id.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE ID = :ID AND DELETED_AT IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetUserByID: %w", err)
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &user, map[string]interface{}{"ID": userID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// UpdateUser updates the mutable profile fields of a user.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET EMAIL = :EMAIL, NAME = :NAME, PROFILE_PICTURE_URL = :PROFILE_PICTURE_URL, UPDATED_AT = :UPDATED_AT
	          WHERE ID = :ID AND DELETED_AT IS NULL`

	user.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
