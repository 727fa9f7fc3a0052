package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type FixtureRole struct {
	ID   int64
	Name string
}

type FixtureUser struct {
	ID         int64
	FullName   string
	Email      string
	Role       *int64
	ReferralID *int64
}

type FixtureProfile struct {
	ID     int64
	UserID *int64
}

type FixtureLogin struct {
	UserID     int64
	OccurredAt time.Time
}

// Fixture is a complete data set for the four report tables.
type Fixture struct {
	Roles    []FixtureRole
	Users    []FixtureUser
	Profiles []FixtureProfile
	Logins   []FixtureLogin
}

// Load replaces the contents of the report tables with f.
func (f Fixture) Load(ctx context.Context, db Execer, driver string) error {
	ph, err := placeholders(driver)
	if err != nil {
		return err
	}

	for _, t := range []string{"login_audit", "profiles", "users", "roles"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	for _, r := range f.Roles {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO roles (id, role_name) VALUES ("+ph(2)+")",
			r.ID, r.Name); err != nil {
			return fmt.Errorf("insert role %d: %w", r.ID, err)
		}
	}
	for _, u := range f.Users {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO users (id, full_name, email, role, referral_id) VALUES ("+ph(5)+")",
			u.ID, u.FullName, u.Email, u.Role, u.ReferralID); err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}
	for _, p := range f.Profiles {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO profiles (id, user_id) VALUES ("+ph(2)+")",
			p.ID, p.UserID); err != nil {
			return fmt.Errorf("insert profile %d: %w", p.ID, err)
		}
	}
	for i, l := range f.Logins {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO login_audit (user_id, occurred_at) VALUES ("+ph(2)+")",
			l.UserID, l.OccurredAt.UTC()); err != nil {
			return fmt.Errorf("insert login %d: %w", i, err)
		}
	}

	// explicit ids leave postgres sequences behind
	if driver == "pgx" || driver == "postgres" {
		for _, t := range []string{"roles", "users", "profiles"} {
			q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", t, t)
			if _, err := db.ExecContext(ctx, q); err != nil {
				return fmt.Errorf("reset %s sequence: %w", t, err)
			}
		}
	}
	return nil
}

func placeholders(driver string) (func(n int) string, error) {
	switch driver {
	case "sqlite3", "mysql":
		return func(n int) string {
			return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
		}, nil
	case "pgx", "postgres":
		return func(n int) string {
			parts := make([]string, n)
			for i := range parts {
				parts[i] = fmt.Sprintf("$%d", i+1)
			}
			return strings.Join(parts, ", ")
		}, nil
	default:
		return nil, fmt.Errorf("no placeholder style for driver %q", driver)
	}
}

func ptr(v int64) *int64 { return &v }

// DevFixture exercises every join edge: a role nobody holds, a user without
// a role, a dangling role, an orphan profile, dangling referrals and a
// tie at the latest login.
func DevFixture() Fixture {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return Fixture{
		Roles: []FixtureRole{
			{ID: 1, Name: "admin"},
			{ID: 2, Name: "editor"},
			{ID: 3, Name: "viewer"},
			{ID: 4, Name: "auditor"},
		},
		Users: []FixtureUser{
			{ID: 1, FullName: "Alice Nguyen", Email: "alice@example.com", Role: ptr(1)},
			{ID: 2, FullName: "Bob Smith", Email: "bob@example.com", Role: ptr(2), ReferralID: ptr(1)},
			{ID: 3, FullName: "Carol Jones", Email: "carol@example.com", Role: nil, ReferralID: ptr(2)},
			{ID: 4, FullName: "Dave Brown", Email: "dave@example.com", Role: ptr(99), ReferralID: ptr(42)},
			{ID: 5, FullName: "Erin Lee", Email: "erin@example.com", Role: ptr(3)},
		},
		Profiles: []FixtureProfile{
			{ID: 1, UserID: ptr(1)},
			{ID: 2, UserID: ptr(2)},
			{ID: 3, UserID: ptr(77)},
		},
		Logins: []FixtureLogin{
			{UserID: 1, OccurredAt: day.Add(10 * time.Hour)},
			{UserID: 1, OccurredAt: day.Add(12 * time.Hour)},
			{UserID: 2, OccurredAt: day.Add(9*time.Hour + 30*time.Minute)},
			{UserID: 2, OccurredAt: day.Add(9*time.Hour + 30*time.Minute)},
			{UserID: 5, OccurredAt: day.Add(8 * time.Hour)},
		},
	}
}
