package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/baechuer/report-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UsersWithRoles_Mapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id", "full_name", "email", "role_name"}).
		AddRow(int64(1), "Alice", "alice@example.com", "admin").
		AddRow(int64(2), "Bob", nil, "editor")
	mock.ExpectQuery("FROM users u\\s+INNER JOIN roles r ON u.role = r.id").WillReturnRows(rows)

	got, err := New(db).UsersWithRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), *got[0].UserID)
	assert.Equal(t, "admin", *got[0].RoleName)
	assert.Nil(t, got[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RolesWithUsers_NullUserSide(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id", "full_name", "email", "role_name"}).
		AddRow(nil, nil, nil, "auditor")
	mock.ExpectQuery("RIGHT JOIN roles r").WillReturnRows(rows)

	got, err := New(db).RolesWithUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Nil(t, got[0].UserID)
	assert.Nil(t, got[0].FullName)
	assert.Equal(t, "auditor", *got[0].RoleName)
}

func TestStore_EmptyResultIsNonNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INNER JOIN users r ON u.referral_id = r.id").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_name", "referral_id", "referral_name"}))

	got, err := New(db).Referrals(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_LatestLogins_Mapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"user_id", "full_name", "latest_login"}).
		AddRow(int64(1), "Alice", at)
	mock.ExpectQuery("SELECT MAX\\(la2.occurred_at\\)").WillReturnRows(rows)

	got, err := New(db).LatestLogins(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, at.Equal(got[0].LatestLogin))
}

func TestStore_ErrorsAreQueryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("CROSS JOIN roles r").WillReturnError(errors.New("connection refused"))

		got, err := New(db).UserRoleCombos(ctx)
		assert.Nil(t, got)

		var qe *domain.QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, domain.ReportUserRoleCombos, qe.Report)
		assert.Equal(t, "query", qe.Op)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("scan", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"user_id", "full_name", "email", "profile_id"}).
			AddRow("not-a-number", "Alice", "alice@example.com", int64(1))
		mock.ExpectQuery("LEFT JOIN profiles p").WillReturnRows(rows)

		_, err = New(db).UsersWithProfiles(ctx)

		var qe *domain.QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, "scan", qe.Op)
		assert.Equal(t, domain.ReportUsersProfiles, qe.Report)
	})

	t.Run("rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"user_id", "full_name", "email", "profile_id"}).
			AddRow(int64(1), "Alice", "alice@example.com", int64(1)).
			AddRow(int64(2), "Bob", "bob@example.com", nil).
			RowError(1, driver.ErrBadConn)
		mock.ExpectQuery("RIGHT JOIN profiles p").WillReturnRows(rows)

		_, err = New(db).ProfilesWithUsers(ctx)

		var qe *domain.QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, "rows", qe.Op)
		assert.ErrorIs(t, err, driver.ErrBadConn)
	})
}

func profileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "full_name", "email", "profile_id"}).
		AddRow(int64(1), "Alice", "alice@example.com", int64(1))
}

func TestStore_ProfileJoins_OneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("LEFT JOIN profiles p").WillReturnRows(profileRows())
	mock.ExpectQuery("RIGHT JOIN profiles p").WillReturnRows(profileRows().AddRow(nil, nil, nil, int64(3)))
	mock.ExpectRollback()

	left, right, err := New(db).ProfileJoins(context.Background())
	require.NoError(t, err)
	assert.Len(t, left, 1)
	assert.Len(t, right, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ProfileJoins_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("begin", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		_, _, err = New(db).ProfileJoins(ctx)

		var qe *domain.QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, domain.ReportProfilesFull, qe.Report)
		assert.Equal(t, "begin", qe.Op)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("right_join_rolls_back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("LEFT JOIN profiles p").WillReturnRows(profileRows())
		mock.ExpectQuery("RIGHT JOIN profiles p").WillReturnError(driver.ErrBadConn)
		mock.ExpectRollback()

		left, right, err := New(db).ProfileJoins(ctx)
		assert.Nil(t, left)
		assert.Nil(t, right)

		var qe *domain.QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, "right join", qe.Op)
		assert.ErrorIs(t, err, driver.ErrBadConn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// queryOnly hides BeginTx, like a caller-owned *sql.Tx would.
type queryOnly struct{ QueryExecutor }

func TestStore_ProfileJoins_WithoutTxSupport(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("LEFT JOIN profiles p").WillReturnRows(profileRows())
	mock.ExpectQuery("RIGHT JOIN profiles p").WillReturnRows(profileRows())

	left, right, err := New(queryOnly{db}).ProfileJoins(context.Background())
	require.NoError(t, err)
	assert.Len(t, left, 1)
	assert.Len(t, right, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
