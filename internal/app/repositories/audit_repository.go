package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Record inserts an audit entry for an admin mutation
func (r *AuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	sqlQuery, args, err := r.sb.Insert("audit_log").
		Columns("admin_id", "action", "table_name", "record_id", "old_value", "new_value").
		Values(entry.AdminID, entry.Action, entry.TableName, entry.RecordID, entry.OldValue, entry.NewValue).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sqlQuery, args...); err != nil {
		logger.Error().Err(err).
			Str("action", entry.Action).
			Int64("recordID", entry.RecordID).
			Msg("Error writing audit entry")
		return fmt.Errorf("error writing audit entry: %w", err)
	}
	return nil
}

// ListByRecord retrieves audit history for a specific record
func (r *AuditRepository) ListByRecord(ctx context.Context, tableName string, recordID int64) ([]models.AuditEntry, error) {
	sqlQuery, args, err := r.sb.Select(
		"id", "admin_id", "action", "table_name", "record_id", "old_value", "new_value", "created_at",
	).
		From("audit_log").
		Where(squirrel.Eq{"table_name": tableName, "record_id": recordID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		err := rows.Scan(
			&e.ID, &e.AdminID, &e.Action, &e.TableName, &e.RecordID,
			&e.OldValue, &e.NewValue, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}
	return entries, nil
}
