package database

import (
	"context"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

type PositionRepository interface {
	Insert(ctx context.Context, entityID string, p domain.Position) error
	LoadSnapshot(ctx context.Context, entityID string) (domain.Snapshot, error)
	GetAllEntities(ctx context.Context) ([]domain.Entity, error)
}
