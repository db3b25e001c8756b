package service

import (
	"context"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/database"
)

// PositionService appends collar fixes to the movement store.
type PositionService struct {
	repo database.PositionRepository
}

func NewPositionService(repo database.PositionRepository) *PositionService {
	return &PositionService{repo: repo}
}

func (s *PositionService) RecordPosition(ctx context.Context, entityID string, p domain.Position) error {
	return s.repo.Insert(ctx, entityID, p)
}

func (s *PositionService) GetAllEntities(ctx context.Context) ([]domain.Entity, error) {
	return s.repo.GetAllEntities(ctx)
}
