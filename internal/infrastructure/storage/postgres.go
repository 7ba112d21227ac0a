// internal/infrastructure/storage/postgres.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientState is one persisted key in a visitor namespace
type ClientState struct {
	ID        uint      `gorm:"primaryKey"`
	Namespace string    `gorm:"size:64;not null;uniqueIndex:idx_client_state_ns_key"`
	Key       string    `gorm:"size:64;not null;uniqueIndex:idx_client_state_ns_key"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name
func (ClientState) TableName() string {
	return "client_state"
}

// Postgres keeps client state in a single GORM-managed table
type Postgres struct {
	db *gorm.DB
}

// NewPostgres creates a PostgreSQL-backed store. The client_state table
// must already exist (see postgres.Migration).
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// Get retrieves a value by key
func (p *Postgres) Get(ctx context.Context, namespace, key string) (string, error) {
	var row ClientState
	err := p.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return row.Value, nil
}

// Set upserts a value under key
func (p *Postgres) Set(ctx context.Context, namespace, key, value string) error {
	row := ClientState{
		Namespace: namespace,
		Key:       key,
		Value:     value,
	}

	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (p *Postgres) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	err := p.db.WithContext(ctx).
		Where("namespace = ? AND key IN ?", namespace, keys).
		Delete(&ClientState{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}
