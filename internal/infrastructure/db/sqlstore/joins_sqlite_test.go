package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/baechuer/report-service/internal/domain"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLite returns a store over a private in-memory database loaded with f.
func newSQLite(t *testing.T, f Fixture) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every new connection would get an empty database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, ApplySchema(ctx, db, "sqlite3"))
	require.NoError(t, f.Load(ctx, db, "sqlite3"))
	return New(db)
}

func TestSQLite_UsersWithRoles_ExcludesNullAndDanglingRoles(t *testing.T) {
	s := newSQLite(t, DevFixture())

	got, err := s.UsersWithRoles(context.Background())
	require.NoError(t, err)

	ids := map[int64]string{}
	for _, r := range got {
		require.NotNil(t, r.RoleName)
		ids[*r.UserID] = *r.RoleName
	}
	assert.Equal(t, map[int64]string{1: "admin", 2: "editor", 5: "viewer"}, ids)
}

func TestSQLite_UsersWithProfiles_OneRowPerUser(t *testing.T) {
	f := DevFixture()
	s := newSQLite(t, f)

	got, err := s.UsersWithProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(f.Users))

	withProfile := map[int64]bool{1: true, 2: true}
	seen := map[int64]int{}
	for _, r := range got {
		seen[*r.UserID]++
		assert.Equal(t, withProfile[*r.UserID], r.ProfileID != nil, "user %d", *r.UserID)
	}
	for _, u := range f.Users {
		assert.Equal(t, 1, seen[u.ID], "user %d", u.ID)
	}
}

func TestSQLite_RolesWithUsers_KeepsEmptyRoles(t *testing.T) {
	s := newSQLite(t, DevFixture())

	got, err := s.RolesWithUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)

	var empty []string
	for _, r := range got {
		if r.UserID == nil {
			assert.Nil(t, r.FullName)
			assert.Nil(t, r.Email)
			empty = append(empty, *r.RoleName)
		}
	}
	assert.Equal(t, []string{"auditor"}, empty)
}

func TestSQLite_ProfilesWithUsers_KeepsOrphanProfiles(t *testing.T) {
	s := newSQLite(t, DevFixture())

	got, err := s.ProfilesWithUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	orphans := 0
	for _, r := range got {
		require.NotNil(t, r.ProfileID)
		if r.UserID == nil {
			orphans++
			assert.Equal(t, int64(3), *r.ProfileID)
		}
	}
	assert.Equal(t, 1, orphans)
}

func TestSQLite_ProfileJoins_ReadsBothHalves(t *testing.T) {
	s := newSQLite(t, DevFixture())

	left, right, err := s.ProfileJoins(context.Background())
	require.NoError(t, err)
	assert.Len(t, left, 5)
	assert.Len(t, right, 3)

	// the transaction is released: the single connection serves the next call
	_, err = s.UsersWithRoles(context.Background())
	assert.NoError(t, err)
}

func TestSQLite_UserRoleCombos_Cardinality(t *testing.T) {
	f := DevFixture()
	s := newSQLite(t, f)

	got, err := s.UserRoleCombos(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, len(f.Users)*len(f.Roles))
}

func TestSQLite_Referrals(t *testing.T) {
	t.Run("valid_referrals_only", func(t *testing.T) {
		s := newSQLite(t, DevFixture())

		got, err := s.Referrals(context.Background())
		require.NoError(t, err)

		pairs := map[int64]int64{}
		for _, r := range got {
			pairs[r.UserID] = r.ReferralID
		}
		// Dave's referrer 42 does not exist
		assert.Equal(t, map[int64]int64{2: 1, 3: 2}, pairs)
	})

	t.Run("no_referrals", func(t *testing.T) {
		f := DevFixture()
		for i := range f.Users {
			f.Users[i].ReferralID = nil
		}
		s := newSQLite(t, f)

		got, err := s.Referrals(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSQLite_LatestLogins(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f := Fixture{
		Users: []FixtureUser{
			{ID: 1, FullName: "Alice", Email: "a@example.com"},
			{ID: 2, FullName: "Bob", Email: "b@example.com"},
			{ID: 3, FullName: "Carol", Email: "c@example.com"},
		},
		Logins: []FixtureLogin{
			{UserID: 1, OccurredAt: day.Add(10 * time.Hour)},
			{UserID: 1, OccurredAt: day.Add(12 * time.Hour)},
			{UserID: 2, OccurredAt: day.Add(9 * time.Hour)},
			{UserID: 2, OccurredAt: day.Add(9 * time.Hour)},
		},
	}
	s := newSQLite(t, f)

	got, err := s.LatestLogins(context.Background())
	require.NoError(t, err)

	byUser := map[int64][]domain.LatestLoginRow{}
	for _, r := range got {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	require.Len(t, byUser[1], 1)
	assert.True(t, day.Add(12*time.Hour).Equal(byUser[1][0].LatestLogin), byUser[1][0].LatestLogin)

	// tie at the maximum is kept as two rows
	require.Len(t, byUser[2], 2)
	for _, r := range byUser[2] {
		assert.True(t, day.Add(9*time.Hour).Equal(r.LatestLogin))
	}

	// no logins, no row
	assert.Empty(t, byUser[3])
}

func TestSQLite_EmptyTables(t *testing.T) {
	s := newSQLite(t, Fixture{})
	ctx := context.Background()

	a, err := s.UsersWithRoles(ctx)
	require.NoError(t, err)
	assert.NotNil(t, a)
	assert.Empty(t, a)

	b, err := s.UserRoleCombos(ctx)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestSQLite_ClosedDatabase(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = New(db).UsersWithRoles(context.Background())

	var qe *domain.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "query", qe.Op)
}
