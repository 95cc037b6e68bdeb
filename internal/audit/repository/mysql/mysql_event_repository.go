// Package mysql persists audit events to MySQL.
package mysql

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

// MySQLEventRepository stores audit events with BINARY(16) ids and JSON columns.
// The DSN must set parseTime=true.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create inserts one event.
func (m *MySQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	row, err := rowcodec.Encode(event)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (` + eventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLEventRepository) List(
	ctx context.Context,
	from, to time.Time,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + eventColumns + ` FROM audit_events
			  WHERE created_at >= ? AND created_at <= ?
			  ORDER BY created_at ASC, id ASC
			  LIMIT ? OFFSET ?`

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
		var id []byte
		var eventType, severity, outcome string

		err := rows.Scan(
			&id,
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

		if err := event.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
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
func (m *MySQLEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events WHERE created_at < ?`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit events")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}
