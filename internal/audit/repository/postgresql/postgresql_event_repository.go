// Package postgresql persists audit events to PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"time"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/repository/rowcodec"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/database"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

const eventColumns = `id, event_type, severity, user_id, session_id, ip_address, user_agent, action,
	resource, endpoint, outcome, error_message, before_state, after_state, metadata, signature, created_at`

// PostgreSQLEventRepository stores audit events using native UUID and JSONB columns.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create inserts one event. Empty JSON payloads and signatures are stored as NULL.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	row, err := rowcodec.Encode(event)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (` + eventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.Type),
		string(event.Severity),
		event.Actor.UserID,
		event.Actor.SessionID,
		event.Actor.IPAddress,
		event.Actor.UserAgent,
		event.Action,
		event.Resource,
		event.Endpoint,
		string(event.Outcome),
		event.Error,
		row.Before,
		row.After,
		row.Metadata,
		row.Signature,
		event.Timestamp,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List returns events with from <= created_at <= to, oldest first, paginated by offset and limit.
func (p *PostgreSQLEventRepository) List(
	ctx context.Context,
	from, to time.Time,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + ` FROM audit_events
			  WHERE created_at >= $1 AND created_at <= $2
			  ORDER BY created_at ASC, id ASC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, from, to, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		var row rowcodec.Row
		var event auditDomain.Event
		var eventType, severity, outcome string

		err := rows.Scan(
			&event.ID,
			&eventType,
			&severity,
			&event.Actor.UserID,
			&event.Actor.SessionID,
			&event.Actor.IPAddress,
			&event.Actor.UserAgent,
			&event.Action,
			&event.Resource,
			&event.Endpoint,
			&outcome,
			&event.Error,
			&row.Before,
			&row.After,
			&row.Metadata,
			&row.Signature,
			&event.Timestamp,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}

		event.Type = auditDomain.EventType(eventType)
		event.Severity = auditDomain.Severity(severity)
		event.Outcome = auditDomain.Outcome(outcome)
		if err := rowcodec.Decode(&row, &event); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}

// DeleteOlderThan removes events created before olderThan. With dryRun it only counts them.
func (p *PostgreSQLEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events WHERE created_at < $1`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit events")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}
