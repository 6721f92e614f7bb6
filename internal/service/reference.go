package service

import (
	"context"
	"fmt"

	"civicreport/internal/models"
	"civicreport/internal/repository"
)

type ReferenceService interface {
	Categories(ctx context.Context) ([]*models.Category, error)
	Statuses(ctx context.Context) ([]*models.Status, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type referenceService struct {
	repo repository.ReferenceRepository
}

func NewReferenceService(repo repository.ReferenceRepository) ReferenceService {
	return &referenceService{repo: repo}
}

func (s *referenceService) Categories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *referenceService) Statuses(ctx context.Context) ([]*models.Status, error) {
	statuses, err := s.repo.ListStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return statuses, nil
}

func (s *referenceService) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}
