package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

var listColumns = []string{
	"id", "event_type", "severity", "user_id", "session_id", "ip_address", "user_agent", "action",
	"resource", "endpoint", "outcome", "error_message", "before_state", "after_state", "metadata",
	"signature", "created_at",
}

func TestPostgreSQLEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_InsertsEvent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		event := &auditDomain.Event{
			ID:        uuid.Must(uuid.NewV7()),
			Timestamp: time.Now().UTC(),
			Type:      auditDomain.EventAuthentication,
			Severity:  auditDomain.SeverityMedium,
			Actor:     auditDomain.Actor{UserID: "u-1", IPAddress: "1.2.3.4"},
			Action:    "login",
			Outcome:   auditDomain.OutcomeFailure,
			Metadata:  map[string]any{"reason": "bad password"},
		}

		mock.ExpectExec("INSERT INTO audit_events").
			WithArgs(
				event.ID, "authentication", "medium", "u-1", "", "1.2.3.4", "", "login",
				"", "", "failure", "", []byte(nil), []byte(nil), []byte(`{"reason":"bad password"}`), []byte(nil), event.Timestamp,
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, NewPostgreSQLEventRepository(db).Create(ctx, event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_ExecFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("INSERT INTO audit_events").WillReturnError(assert.AnError)

		err = NewPostgreSQLEventRepository(db).Create(ctx, &auditDomain.Event{ID: uuid.New()})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to create audit event")
	})
}

func TestPostgreSQLEventRepository_List(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	id := uuid.Must(uuid.NewV7())

	rows := sqlmock.NewRows(listColumns).AddRow(
		id.String(), "key_management", "medium", "u-1", "", "1.2.3.4", "curl", "api_key.rotate",
		"k-1", "", "success", "", nil, []byte(`{"active":true}`), nil, []byte{1, 2, 3}, from.Add(time.Hour),
	)
	mock.ExpectQuery("SELECT (.+) FROM audit_events").WithArgs(from, to, 100, 0).WillReturnRows(rows)

	events, err := NewPostgreSQLEventRepository(db).List(ctx, from, to, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, id, ev.ID)
	assert.Equal(t, auditDomain.EventKeyManagement, ev.Type)
	assert.Equal(t, "curl", ev.Actor.UserAgent)
	assert.Nil(t, ev.Before)
	assert.Equal(t, map[string]any{"active": true}, ev.After)
	assert.Equal(t, []byte{1, 2, 3}, ev.Signature)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	olderThan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success_DryRunCounts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT COUNT").WithArgs(olderThan).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := NewPostgreSQLEventRepository(db).DeleteOlderThan(ctx, olderThan, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
	})

	t.Run("Success_Deletes", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("DELETE FROM audit_events").WithArgs(olderThan).WillReturnResult(sqlmock.NewResult(0, 4))

		count, err := NewPostgreSQLEventRepository(db).DeleteOlderThan(ctx, olderThan, false)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})
}
