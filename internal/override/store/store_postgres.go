package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clearance/internal/override/models"
	"clearance/internal/risk"
	"clearance/pkg/platform/sentinel"
)

// PostgresStore persists the override log in PostgreSQL. Identifiers come
// from a BIGSERIAL column so they increase across processes.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed override log.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record *models.Record) (*models.Record, error) {
	if record == nil {
		return nil, fmt.Errorf("override record is required")
	}
	saved := *record
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO lane_overrides (container_id, officer_id, from_lane, to_lane, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, record.ContainerID, record.OfficerID, string(record.FromLane), string(record.ToLane), record.Reason, record.CreatedAt,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append override: %w", err)
	}
	return &saved, nil
}

func (s *PostgresStore) ListByContainer(ctx context.Context, containerID string) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, container_id, officer_id, from_lane, to_lane, reason, created_at
		FROM lane_overrides
		WHERE container_id = $1
		ORDER BY id
	`, containerID)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overrides: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Latest(ctx context.Context, containerID string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, container_id, officer_id, from_lane, to_lane, reason, created_at
		FROM lane_overrides
		WHERE container_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, containerID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find latest override: %w", err)
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		record   models.Record
		from, to string
	)
	if err := row.Scan(&record.ID, &record.ContainerID, &record.OfficerID, &from, &to, &record.Reason, &record.CreatedAt); err != nil {
		return nil, err
	}
	record.FromLane, record.ToLane = risk.Lane(from), risk.Lane(to)
	return &record, nil
}
