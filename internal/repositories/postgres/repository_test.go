package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRepository_SaveRoster(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO draw_state (key, names, updated_at)")).
		WithArgs("roster", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewStateRepository(db)
	require.NoError(t, repo.SaveRoster(context.Background(), []string{"Ada", "Linus"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepository_SaveWinnersError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO draw_state (key, winners, updated_at)")).
		WithArgs("winners", []byte(`{"1st":["Ada"]}`), sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	repo := NewStateRepository(db)
	err = repo.SaveWinners(context.Background(), map[string][]string{"1st": {"Ada"}})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepository_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	older := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)
	rows := sqlmock.NewRows([]string{"key", "names", "winners", "updated_at"}).
		AddRow("roster", "{Ada,Linus,Grace}", nil, older).
		AddRow("pool", "{Grace}", nil, newer).
		AddRow("winners", nil, []byte(`{"1st":["Ada","Linus"]}`), newer)
	mock.ExpectQuery(regexp.QuoteMeta(selectStateSQL)).WillReturnRows(rows)

	st, err := NewStateRepository(db).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Linus", "Grace"}, st.Roster)
	assert.Equal(t, []string{"Grace"}, st.Pool)
	assert.Equal(t, map[string][]string{"1st": {"Ada", "Linus"}}, st.Winners)
	assert.Equal(t, newer, st.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepository_LoadEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectStateSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"key", "names", "winners", "updated_at"}))

	_, err = NewStateRepository(db).Load(context.Background())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDrawRecordRepository_CreateAndFindRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drawnAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &models.DrawRecord{
		ID: "rec-1", Round: 1, Tier: "3rd", TierLabel: "Third Prize",
		Names: []string{"Ada"}, PoolBefore: 10, DrawnAt: drawnAt,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO draw_records")).
		WithArgs("rec-1", 1, "3rd", "Third Prize", sqlmock.AnyArg(), 10, drawnAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM draw_records ORDER BY drawn_at DESC LIMIT $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "round", "tier", "tier_label", "names", "pool_before", "drawn_at"}).
			AddRow("rec-1", 1, "3rd", "Third Prize", "{Ada}", 10, drawnAt))

	repo := NewDrawRecordRepository(db)
	require.NoError(t, repo.Create(context.Background(), rec))

	got, err := repo.FindRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS draw_state").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = EnsureSchema(context.Background(), db)
	assert.ErrorContains(t, err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}
