package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"posterminal/internal/domain"
	apperrors "posterminal/internal/errors"
)

const createCartSessionTable = `
	CREATE TABLE IF NOT EXISTS CartSession (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		payload JSON NOT NULL,
		createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatedAt DATETIME(6) NOT NULL,
		INDEX idx_updated (updatedAt)
	)`

type MySQLCartRepository struct {
	db *sql.DB
}

func NewMySQLCartRepository(db *sql.DB) *MySQLCartRepository {
	return &MySQLCartRepository{db: db}
}

func (r *MySQLCartRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCartSessionTable); err != nil {
		return fmt.Errorf("creating CartSession table: %w", err)
	}
	return nil
}

func (r *MySQLCartRepository) Load(ctx context.Context, id string) (*domain.CartSession, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM CartSession WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("cart session not found")
		}
		return nil, fmt.Errorf("querying cart session: %w", err)
	}

	return domain.DecodeCartSession(payload)
}

func (r *MySQLCartRepository) Save(ctx context.Context, session *domain.CartSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding cart session: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO CartSession (id, payload, updatedAt)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), updatedAt = VALUES(updatedAt)`,
		session.ID, payload, session.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving cart session: %w", err)
	}
	return nil
}

func (r *MySQLCartRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM CartSession WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting cart session: %w", err)
	}
	return nil
}
