package repository

import (
	"context"
	"database/sql"
	"errors"

	"civicreport/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ReferenceRepository serves the seeded lookup tables and dashboard aggregates.
type ReferenceRepository interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListStatuses(ctx context.Context) ([]*models.Status, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	GetStatusByName(ctx context.Context, name string) (*models.Status, error)
	GetStats(ctx context.Context) (*models.Stats, error)
}

type referenceRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewReferenceRepository(db *sqlx.DB, logger *zap.Logger) ReferenceRepository {
	return &referenceRepository{db: db, logger: logger}
}

func (r *referenceRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories := []*models.Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY id`); err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, err
	}
	return categories, nil
}

func (r *referenceRepository) ListStatuses(ctx context.Context) ([]*models.Status, error) {
	statuses := []*models.Status{}
	if err := r.db.SelectContext(ctx, &statuses, `SELECT id, name FROM statuses ORDER BY id`); err != nil {
		r.logger.Error("Failed to list statuses", zap.Error(err))
		return nil, err
	}
	return statuses, nil
}

func (r *referenceRepository) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := r.db.GetContext(ctx, &category, r.db.Rebind(`SELECT id, name FROM categories WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *referenceRepository) GetStatusByName(ctx context.Context, name string) (*models.Status, error) {
	var status models.Status
	err := r.db.GetContext(ctx, &status, r.db.Rebind(`SELECT id, name FROM statuses WHERE name = ?`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// GetStats counts all, pending and resolved complaints in a single aggregate query.
func (r *referenceRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	query := r.db.Rebind(`
		SELECT
			COUNT(c.id) AS total_reports,
			COALESCE(SUM(CASE WHEN s.name = ? THEN 1 ELSE 0 END), 0) AS pending_reports,
			COALESCE(SUM(CASE WHEN s.name = ? THEN 1 ELSE 0 END), 0) AS resolved_reports
		FROM complaints c
		JOIN statuses s ON c.status_id = s.id`)

	if err := r.db.GetContext(ctx, &stats, query, models.StatusPending, models.StatusResolved); err != nil {
		r.logger.Error("Failed to get stats", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}
