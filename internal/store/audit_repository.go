package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

// AuditRepository appends audit log entries.
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// RecordAudit appends one audit entry.
func (r *AuditRepository) RecordAudit(ctx context.Context, entry *domain.AuditEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	query := `
        INSERT INTO audit_log (actor_id, action, target_id, metadata, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	if err := r.db.QueryRow(ctx, query, entry.ActorID, entry.Action, entry.TargetID, metadata).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
