package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"civicreport/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ComplaintRepository applies role scoping itself: every read takes the viewer's
// user id and admins are recognised inside the SQL, so no caller can bypass it.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint, statusName string) (int64, error)
	ListForUser(ctx context.Context, viewerID int64, page, perPage int, status string) ([]*models.Complaint, error)
	GetOne(ctx context.Context, viewerID, complaintID int64) (*models.Complaint, error)
	Count(ctx context.Context, viewerID int64, status string) (int64, error)
	UpdateStatus(ctx context.Context, complaintID int64, statusName string) error
	Search(ctx context.Context, viewerID int64, text string) ([]*models.Complaint, error)
}

type complaintRepository struct {
	db      *sqlx.DB
	dialect dialect
	logger  *zap.Logger
}

func NewComplaintRepository(db *sqlx.DB, logger *zap.Logger) ComplaintRepository {
	return &complaintRepository{db: db, dialect: dialectFor(db), logger: logger}
}

const complaintColumns = `
	c.id, c.user_id, c.category_id, c.status_id, c.title, c.description,
	c.image_url, c.location, c.created_at, c.updated_at,
	s.name AS status, cat.name AS category_name, u.name AS user_name`

const complaintJoins = `
	JOIN statuses s ON c.status_id = s.id
	JOIN categories cat ON c.category_id = cat.id
	JOIN users u ON c.user_id = u.id`

// visibleTo restricts rows to the viewer's own complaints unless the viewer is an admin.
// It binds the viewer id twice.
const visibleTo = `(c.user_id = ? OR EXISTS (
	SELECT 1 FROM users au JOIN roles ar ON au.role_id = ar.id
	WHERE au.id = ? AND ar.name = 'admin'))`

const complaintOrder = ` ORDER BY c.created_at DESC, c.id DESC`

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint, statusName string) (int64, error) {
	query := r.db.Rebind(`
		INSERT INTO complaints (user_id, category_id, title, description, image_url, location, status_id)
		SELECT CAST(? AS BIGINT), cat.id, ?, ?, ?, ?, s.id
		FROM categories cat, statuses s
		WHERE cat.id = ? AND s.name = ?
		RETURNING id`)

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		complaint.UserID,
		complaint.Title,
		complaint.Description,
		complaint.ImageURL,
		complaint.Location,
		complaint.CategoryID,
		statusName,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInvalidReference
		}
		r.logger.Error("Failed to create complaint", zap.Int64("user_id", complaint.UserID), zap.Error(err))
		return 0, err
	}

	complaint.ID = id
	return id, nil
}

func (r *complaintRepository) ListForUser(ctx context.Context, viewerID int64, page, perPage int, status string) ([]*models.Complaint, error) {
	if page < 1 {
		page = 1
	}
	where, args := r.scope(viewerID, status)

	query := `SELECT ` + complaintColumns + ` FROM complaints c` + complaintJoins + where + complaintOrder + ` LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	complaints := []*models.Complaint{}
	if err := r.db.SelectContext(ctx, &complaints, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to list complaints", zap.Int64("viewer_id", viewerID), zap.Error(err))
		return nil, err
	}
	return complaints, nil
}

func (r *complaintRepository) GetOne(ctx context.Context, viewerID, complaintID int64) (*models.Complaint, error) {
	var complaint models.Complaint
	query := `SELECT ` + complaintColumns + ` FROM complaints c` + complaintJoins + ` WHERE c.id = ? AND ` + visibleTo

	err := r.db.GetContext(ctx, &complaint, r.db.Rebind(query), complaintID, viewerID, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get complaint", zap.Int64("id", complaintID), zap.Error(err))
		return nil, err
	}
	return &complaint, nil
}

// Count counts complaints visible to viewerID; a zero viewerID counts across all users.
func (r *complaintRepository) Count(ctx context.Context, viewerID int64, status string) (int64, error) {
	var (
		where string
		args  []interface{}
	)
	if viewerID != 0 {
		where, args = r.scope(viewerID, status)
	} else if status != "" {
		where, args = ` WHERE s.name = ?`, []interface{}{status}
	}

	query := `SELECT COUNT(*) FROM complaints c JOIN statuses s ON c.status_id = s.id` + where

	var count int64
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to count complaints", zap.Int64("viewer_id", viewerID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

// UpdateStatus never writes an unresolved status: an unknown name is ErrInvalidReference.
func (r *complaintRepository) UpdateStatus(ctx context.Context, complaintID int64, statusName string) error {
	var statusID int64
	err := r.db.GetContext(ctx, &statusID, r.db.Rebind(`SELECT id FROM statuses WHERE name = ?`), statusName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidReference
		}
		return err
	}

	query := r.db.Rebind(`UPDATE complaints SET status_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, statusID, complaintID)
	if err != nil {
		r.logger.Error("Failed to update complaint status",
			zap.Int64("id", complaintID), zap.String("status", statusName), zap.Error(err))
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

func (r *complaintRepository) Search(ctx context.Context, viewerID int64, text string) ([]*models.Complaint, error) {
	complaints := []*models.Complaint{}

	arg := r.dialect.searchArg(text)
	if strings.TrimSpace(arg) == "" {
		return complaints, nil
	}

	query := `SELECT ` + complaintColumns + ` FROM ` + r.dialect.searchSource() + complaintJoins +
		` WHERE ` + r.dialect.searchPredicate() + ` AND ` + visibleTo + complaintOrder

	if err := r.db.SelectContext(ctx, &complaints, r.db.Rebind(query), arg, viewerID, viewerID); err != nil {
		r.logger.Error("Failed to search complaints", zap.Int64("viewer_id", viewerID), zap.Error(err))
		return nil, err
	}
	return complaints, nil
}

func (r *complaintRepository) scope(viewerID int64, status string) (string, []interface{}) {
	clauses := []string{visibleTo}
	args := []interface{}{viewerID, viewerID}
	if status != "" {
		clauses = append(clauses, "s.name = ?")
		args = append(args, status)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
