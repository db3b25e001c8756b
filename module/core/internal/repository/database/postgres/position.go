package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/database"
)

var _ database.PositionRepository = (*PositionRepo)(nil)

// NotifyChannel is the LISTEN/NOTIFY channel raised on every committed
// insert. The payload is the entity id.
const NotifyChannel = "position_records"

type PositionRepo struct {
	db *sql.DB
}

func NewPositionRepo(db *sql.DB) *PositionRepo {
	return &PositionRepo{db: db}
}

func (r *PositionRepo) Insert(ctx context.Context, entityID string, p domain.Position) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO position_records (entity_id, timestamp_key, latitude, longitude) VALUES ($1, $2, $3, $4)`,
		entityID, strconv.FormatInt(p.Timestamp, 10), p.Lat, p.Lon,
	); err != nil {
		return fmt.Errorf("insert position: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, entityID); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSnapshot returns every stored record of the entity in insertion order.
// Nullable columns map to missing record fields.
func (r *PositionRepo) LoadSnapshot(ctx context.Context, entityID string) (domain.Snapshot, error) {
	snap := domain.Snapshot{EntityID: entityID}

	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp_key, latitude, longitude FROM position_records WHERE entity_id = $1 ORDER BY id ASC`,
		entityID,
	)
	if err != nil {
		return snap, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			key      sql.NullString
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&key, &lat, &lon); err != nil {
			return snap, err
		}
		rec := domain.PositionRecord{Key: key.String}
		if lat.Valid {
			v := lat.Float64
			rec.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			rec.Longitude = &v
		}
		snap.Records = append(snap.Records, rec)
	}
	return snap, rows.Err()
}

func (r *PositionRepo) GetAllEntities(ctx context.Context) ([]domain.Entity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT entity_id FROM position_records ORDER BY entity_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Entity
	for rows.Next() {
		var e domain.Entity
		if err := rows.Scan(&e.EntityID); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
