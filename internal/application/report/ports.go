package report

import (
	"context"
	"time"

	"github.com/baechuer/report-service/internal/domain"
)

// Repo runs the report statements. *sqlstore.Store implements it.
type Repo interface {
	UsersWithRoles(ctx context.Context) ([]domain.UserRoleRow, error)
	UsersWithProfiles(ctx context.Context) ([]domain.UserProfileRow, error)
	RolesWithUsers(ctx context.Context) ([]domain.UserRoleRow, error)
	// ProfileJoins returns the left and right joins of users and profiles
	// read from one snapshot.
	ProfileJoins(ctx context.Context) (left, right []domain.UserProfileRow, err error)
	UserRoleCombos(ctx context.Context) ([]domain.UserRoleComboRow, error)
	Referrals(ctx context.Context) ([]domain.ReferralRow, error)
	LatestLogins(ctx context.Context) ([]domain.LatestLoginRow, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, payload any) error
}
