package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

type mockPositionRepo struct {
	insertFn         func(ctx context.Context, entityID string, p domain.Position) error
	loadSnapshotFn   func(ctx context.Context, entityID string) (domain.Snapshot, error)
	getAllEntitiesFn func(ctx context.Context) ([]domain.Entity, error)
}

func (m *mockPositionRepo) Insert(ctx context.Context, entityID string, p domain.Position) error {
	return m.insertFn(ctx, entityID, p)
}

func (m *mockPositionRepo) LoadSnapshot(ctx context.Context, entityID string) (domain.Snapshot, error) {
	return m.loadSnapshotFn(ctx, entityID)
}

func (m *mockPositionRepo) GetAllEntities(ctx context.Context) ([]domain.Entity, error) {
	return m.getAllEntitiesFn(ctx)
}

func TestRecordPosition_Success(t *testing.T) {
	var (
		gotID  string
		gotPos domain.Position
	)
	repo := &mockPositionRepo{
		insertFn: func(_ context.Context, entityID string, p domain.Position) error {
			gotID, gotPos = entityID, p
			return nil
		},
	}

	svc := NewPositionService(repo)
	p := domain.Position{Lat: 6.5805, Lon: 81.397, Timestamp: 1715003456}

	if err := svc.RecordPosition(context.Background(), "elephantId6", p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "elephantId6" {
		t.Errorf("expected elephantId6, got %s", gotID)
	}
	if gotPos != p {
		t.Errorf("expected %+v, got %+v", p, gotPos)
	}
}

func TestRecordPosition_RepoError(t *testing.T) {
	repo := &mockPositionRepo{
		insertFn: func(_ context.Context, _ string, _ domain.Position) error {
			return errors.New("db error")
		},
	}

	svc := NewPositionService(repo)
	if err := svc.RecordPosition(context.Background(), "X", domain.Position{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetAllEntities_Success(t *testing.T) {
	repo := &mockPositionRepo{
		getAllEntitiesFn: func(_ context.Context) ([]domain.Entity, error) {
			return []domain.Entity{{EntityID: "elephantId1"}, {EntityID: "elephantId6"}}, nil
		},
	}

	svc := NewPositionService(repo)
	entities, err := svc.GetAllEntities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[1].EntityID != "elephantId6" {
		t.Errorf("expected elephantId6, got %s", entities[1].EntityID)
	}
}

func TestGetAllEntities_RepoError(t *testing.T) {
	repo := &mockPositionRepo{
		getAllEntitiesFn: func(_ context.Context) ([]domain.Entity, error) {
			return nil, errors.New("db error")
		},
	}

	svc := NewPositionService(repo)
	if _, err := svc.GetAllEntities(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
