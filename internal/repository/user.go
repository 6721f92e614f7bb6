package repository

import (
	"context"
	"database/sql"
	"errors"

	"civicreport/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, roleName string) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	IsAdmin(ctx context.Context, id int64) (bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id int64, roleName string) error
}

type userRepository struct {
	db      *sqlx.DB
	dialect dialect
	logger  *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, dialect: dialectFor(db), logger: logger}
}

const userColumns = `u.id, u.name, u.email, u.password_hash, u.role_id, r.name AS role, u.created_at`

// CreateUser inserts the user with the role resolved by name. The unique index on
// email is the arbiter for concurrent registrations.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User, roleName string) error {
	query := r.db.Rebind(`
		INSERT INTO users (name, email, password_hash, role_id)
		SELECT ?, ?, ?, r.id FROM roles r WHERE r.name = ?
		RETURNING id, role_id`)

	err := r.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.PasswordHash, roleName).
		Scan(&user.ID, &user.RoleID)
	switch {
	case err == nil:
		user.Role = roleName
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrInvalidReference
	case r.dialect.isUniqueViolation(err):
		return ErrDuplicateEmail
	default:
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return err
	}
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users u JOIN roles r ON u.role_id = r.id WHERE u.email = ?`)
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users u JOIN roles r ON u.role_id = r.id WHERE u.id = ?`)
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by ID", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) IsAdmin(ctx context.Context, id int64) (bool, error) {
	var count int
	query := r.db.Rebind(`
		SELECT COUNT(*)
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.id = ? AND r.name = ?`)
	if err := r.db.GetContext(ctx, &count, query, id, models.RoleAdmin); err != nil {
		r.logger.Error("Failed to check admin role", zap.Int64("id", id), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON u.role_id = r.id ORDER BY u.id`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, roleName string) error {
	var roleID int64
	err := r.db.GetContext(ctx, &roleID, r.db.Rebind(`SELECT id FROM roles WHERE name = ?`), roleName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidReference
		}
		return err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET role_id = ? WHERE id = ?`), roleID, id)
	if err != nil {
		r.logger.Error("Failed to update user role", zap.Int64("id", id), zap.String("role", roleName), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
