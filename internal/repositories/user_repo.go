package repositories

import (
	"context"

	"invoiceflow/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	SetDisabled(ctx context.Context, email string, disabled bool) error
	List(ctx context.Context) ([]*models.User, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

// Create inserts a user. Emails are unique; a second insert fails with ErrDuplicate.
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, disabled, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.Email, user.PasswordHash, user.Disabled)
	return mapErr(err, "create user")
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT email, password_hash, disabled, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&user.Email, &user.PasswordHash, &user.Disabled, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "get user")
	}
	return user, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE email = $2`, passwordHash, email)
	if err != nil {
		return mapErr(err, "update password")
	}
	return requireRow(tag, "update password")
}

func (r *userRepo) SetDisabled(ctx context.Context, email string, disabled bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET disabled = $1, updated_at = NOW() WHERE email = $2`, disabled, email)
	if err != nil {
		return mapErr(err, "set user disabled")
	}
	return requireRow(tag, "set user disabled")
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT email, password_hash, disabled, created_at, updated_at FROM users ORDER BY email`)
	if err != nil {
		return nil, mapErr(err, "list users")
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.Email, &user.PasswordHash, &user.Disabled, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, mapErr(err, "scan user")
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
