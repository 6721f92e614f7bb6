package service

import (
	"context"
	"errors"
	"fmt"

	"civicreport/internal/models"
	"civicreport/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidStatus     = errors.New("invalid status")
)

// ComplaintPage is one page of a viewer's complaint listing.
type ComplaintPage struct {
	Complaints []*models.Complaint `json:"complaints"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
}

type ComplaintService interface {
	Create(ctx context.Context, userID int64, input models.CreateComplaintInput) (int64, error)
	List(ctx context.Context, viewerID int64, query models.ListComplaintsQuery) (*ComplaintPage, error)
	Get(ctx context.Context, viewerID, complaintID int64) (*models.Complaint, error)
	Search(ctx context.Context, viewerID int64, text string) ([]*models.Complaint, error)
	UpdateStatus(ctx context.Context, complaintID int64, status string) error
}

type complaintService struct {
	repo   repository.ComplaintRepository
	refs   repository.ReferenceRepository
	logger *zap.Logger
}

func NewComplaintService(repo repository.ComplaintRepository, refs repository.ReferenceRepository, logger *zap.Logger) ComplaintService {
	return &complaintService{repo: repo, refs: refs, logger: logger}
}

// Create files a new complaint in the Pending status.
func (s *complaintService) Create(ctx context.Context, userID int64, input models.CreateComplaintInput) (int64, error) {
	category, err := s.refs.GetCategoryByID(ctx, input.CategoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil {
		return 0, ErrInvalidCategory
	}

	complaint := &models.Complaint{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Location:    input.Location,
	}

	// the category was checked above, so a missing reference here is the seeded Pending status
	id, err := s.repo.Create(ctx, complaint, models.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to create complaint: %w", err)
	}

	s.logger.Info("Complaint created", zap.Int64("complaint_id", id), zap.Int64("user_id", userID))
	return id, nil
}

func (s *complaintService) List(ctx context.Context, viewerID int64, query models.ListComplaintsQuery) (*ComplaintPage, error) {
	complaints, err := s.repo.ListForUser(ctx, viewerID, query.Page, query.PerPage, query.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}

	total, err := s.repo.Count(ctx, viewerID, query.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}

	return &ComplaintPage{
		Complaints: complaints,
		Total:      total,
		Page:       query.Page,
		PerPage:    query.PerPage,
	}, nil
}

// Get returns ErrComplaintNotFound both for a missing complaint and for one the viewer may not see.
func (s *complaintService) Get(ctx context.Context, viewerID, complaintID int64) (*models.Complaint, error) {
	complaint, err := s.repo.GetOne(ctx, viewerID, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	if complaint == nil {
		return nil, ErrComplaintNotFound
	}
	return complaint, nil
}

func (s *complaintService) Search(ctx context.Context, viewerID int64, text string) ([]*models.Complaint, error) {
	complaints, err := s.repo.Search(ctx, viewerID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to search complaints: %w", err)
	}
	return complaints, nil
}

// UpdateStatus only accepts a status from the seeded set.
func (s *complaintService) UpdateStatus(ctx context.Context, complaintID int64, status string) error {
	known, err := s.refs.GetStatusByName(ctx, status)
	if err != nil {
		return fmt.Errorf("failed to look up status: %w", err)
	}
	if known == nil {
		return ErrInvalidStatus
	}

	err = s.repo.UpdateStatus(ctx, complaintID, known.Name)
	switch {
	case err == nil:
		s.logger.Info("Complaint status updated", zap.Int64("complaint_id", complaintID), zap.String("status", status))
		return nil
	case errors.Is(err, repository.ErrInvalidReference):
		return ErrInvalidStatus
	case errors.Is(err, repository.ErrNotFound):
		return ErrComplaintNotFound
	default:
		return fmt.Errorf("failed to update complaint: %w", err)
	}
}
