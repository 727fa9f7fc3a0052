package sqlstore

import (
	"context"
	"database/sql"

	"github.com/baechuer/report-service/internal/domain"
)

// QueryExecutor is the only capability the store needs from the database.
// *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TxBeginner is implemented by *sql.DB and *sql.Conn. When the executor
// has it, multi-statement reports read from one transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// snapshotTx reads every statement from the same snapshot. Postgres needs
// REPEATABLE READ for that; InnoDB and SQLite give it by default.
var snapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

type Store struct {
	db QueryExecutor
}

func New(db QueryExecutor) *Store {
	return &Store{db: db}
}

func (s *Store) UsersWithRoles(ctx context.Context) ([]domain.UserRoleRow, error) {
	return query(ctx, s.db, domain.ReportUsersRoles, qUsersWithRoles, scanUserRole)
}

func (s *Store) UsersWithProfiles(ctx context.Context) ([]domain.UserProfileRow, error) {
	return query(ctx, s.db, domain.ReportUsersProfiles, qUsersWithProfiles, scanUserProfile)
}

func (s *Store) RolesWithUsers(ctx context.Context) ([]domain.UserRoleRow, error) {
	return query(ctx, s.db, domain.ReportRolesUsers, qRolesWithUsers, scanUserRole)
}

// ProfilesWithUsers is the right-join half of the profiles-full report.
func (s *Store) ProfilesWithUsers(ctx context.Context) ([]domain.UserProfileRow, error) {
	return query(ctx, s.db, domain.ReportProfilesFull, qProfilesWithUsers, scanUserProfile)
}

// ProfileJoins returns both halves of the profiles-full report, read from
// one transaction so that their union matches a single state of the data.
func (s *Store) ProfileJoins(ctx context.Context) (left, right []domain.UserProfileRow, err error) {
	db := s.db
	if b, ok := s.db.(TxBeginner); ok {
		tx, err := b.BeginTx(ctx, snapshotTx)
		if err != nil {
			return nil, nil, &domain.QueryError{Report: domain.ReportProfilesFull, Op: "begin", Err: err}
		}
		defer func() { _ = tx.Rollback() }()
		db = tx
	}

	left, err = query(ctx, db, domain.ReportProfilesFull, qUsersWithProfiles, scanUserProfile)
	if err != nil {
		return nil, nil, &domain.QueryError{Report: domain.ReportProfilesFull, Op: "left join", Err: err}
	}
	right, err = query(ctx, db, domain.ReportProfilesFull, qProfilesWithUsers, scanUserProfile)
	if err != nil {
		return nil, nil, &domain.QueryError{Report: domain.ReportProfilesFull, Op: "right join", Err: err}
	}
	return left, right, nil
}

func (s *Store) UserRoleCombos(ctx context.Context) ([]domain.UserRoleComboRow, error) {
	return query(ctx, s.db, domain.ReportUserRoleCombos, qUserRoleCombos, func(rows *sql.Rows) (domain.UserRoleComboRow, error) {
		var r domain.UserRoleComboRow
		err := rows.Scan(&r.UserID, &r.FullName, &r.RoleName)
		return r, err
	})
}

func (s *Store) Referrals(ctx context.Context) ([]domain.ReferralRow, error) {
	return query(ctx, s.db, domain.ReportReferrals, qReferrals, func(rows *sql.Rows) (domain.ReferralRow, error) {
		var r domain.ReferralRow
		err := rows.Scan(&r.UserID, &r.UserName, &r.ReferralID, &r.ReferralName)
		return r, err
	})
}

func (s *Store) LatestLogins(ctx context.Context) ([]domain.LatestLoginRow, error) {
	return query(ctx, s.db, domain.ReportLatestLogin, qLatestLogins, func(rows *sql.Rows) (domain.LatestLoginRow, error) {
		var r domain.LatestLoginRow
		if err := rows.Scan(&r.UserID, &r.FullName, &r.LatestLogin); err != nil {
			return r, err
		}
		r.LatestLogin = r.LatestLogin.UTC()
		return r, nil
	})
}

func scanUserRole(rows *sql.Rows) (domain.UserRoleRow, error) {
	var r domain.UserRoleRow
	err := rows.Scan(&r.UserID, &r.FullName, &r.Email, &r.RoleName)
	return r, err
}

func scanUserProfile(rows *sql.Rows) (domain.UserProfileRow, error) {
	var r domain.UserProfileRow
	err := rows.Scan(&r.UserID, &r.FullName, &r.Email, &r.ProfileID)
	return r, err
}

// query runs q and scans every row. Failures come back as *domain.QueryError.
// The result is never nil so it always encodes as a JSON array.
func query[T any](ctx context.Context, db QueryExecutor, id domain.ReportID, q string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, &domain.QueryError{Report: id, Op: "query", Err: err}
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, &domain.QueryError{Report: id, Op: "scan", Err: err}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.QueryError{Report: id, Op: "rows", Err: err}
	}
	return out, nil
}
