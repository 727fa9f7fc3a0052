package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baechuer/report-service/internal/audit"
	"github.com/baechuer/report-service/internal/domain"
	"github.com/baechuer/report-service/internal/logger"
	"github.com/baechuer/report-service/internal/metrics"
	pkgctx "github.com/baechuer/report-service/internal/pkg/context"
	"github.com/rs/zerolog"
)

type Options struct {
	// Cache is used only when CacheTTL > 0.
	Cache    Cache
	CacheTTL time.Duration

	Publisher EventPublisher
	Audit     *audit.Logger

	// QueryTimeout bounds each store call; 0 leaves it to the caller's ctx.
	QueryTimeout time.Duration

	Clock func() time.Time
}

type Service struct {
	repo  Repo
	cache Cache
	ttl   time.Duration
	pub   EventPublisher
	audit *audit.Logger

	queryTimeout time.Duration
	now          func() time.Time
}

func New(repo Repo, opts Options) *Service {
	s := &Service{
		repo:         repo,
		pub:          opts.Publisher,
		audit:        opts.Audit,
		queryTimeout: opts.QueryTimeout,
		now:          opts.Clock,
	}
	if opts.Cache != nil && opts.CacheTTL > 0 {
		s.cache = opts.Cache
		s.ttl = opts.CacheTTL
	}
	if s.pub == nil {
		s.pub = NoopPublisher{}
	}
	if s.audit == nil {
		s.audit = audit.New(zerolog.Nop())
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) UsersWithRoles(ctx context.Context) ([]domain.UserRoleRow, error) {
	return run(ctx, s, domain.ReportUsersRoles, s.repo.UsersWithRoles)
}

func (s *Service) UsersWithProfiles(ctx context.Context) ([]domain.UserProfileRow, error) {
	return run(ctx, s, domain.ReportUsersProfiles, s.repo.UsersWithProfiles)
}

func (s *Service) RolesWithUsers(ctx context.Context) ([]domain.UserRoleRow, error) {
	return run(ctx, s, domain.ReportRolesUsers, s.repo.RolesWithUsers)
}

// ProfilesFullOuter merges the left and right joins of users and profiles
// into their distinct union.
func (s *Service) ProfilesFullOuter(ctx context.Context) ([]domain.UserProfileRow, error) {
	return run(ctx, s, domain.ReportProfilesFull, func(ctx context.Context) ([]domain.UserProfileRow, error) {
		left, right, err := s.repo.ProfileJoins(ctx)
		if err != nil {
			return nil, err
		}
		return MergeDistinct(left, right, userProfileKey), nil
	})
}

func (s *Service) UserRoleCombos(ctx context.Context) ([]domain.UserRoleComboRow, error) {
	return run(ctx, s, domain.ReportUserRoleCombos, s.repo.UserRoleCombos)
}

func (s *Service) Referrals(ctx context.Context) ([]domain.ReferralRow, error) {
	return run(ctx, s, domain.ReportReferrals, s.repo.Referrals)
}

// LatestLogins keeps one row per login tied at a user's maximum timestamp.
func (s *Service) LatestLogins(ctx context.Context) ([]domain.LatestLoginRow, error) {
	return run(ctx, s, domain.ReportLatestLogin, s.repo.LatestLogins)
}

// Run produces the report named by id. The result is always a slice.
func (s *Service) Run(ctx context.Context, id domain.ReportID) (any, error) {
	switch id {
	case domain.ReportUsersRoles:
		return s.UsersWithRoles(ctx)
	case domain.ReportUsersProfiles:
		return s.UsersWithProfiles(ctx)
	case domain.ReportRolesUsers:
		return s.RolesWithUsers(ctx)
	case domain.ReportProfilesFull:
		return s.ProfilesFullOuter(ctx)
	case domain.ReportUserRoleCombos:
		return s.UserRoleCombos(ctx)
	case domain.ReportReferrals:
		return s.Referrals(ctx)
	case domain.ReportLatestLogin:
		return s.LatestLogins(ctx)
	default:
		return nil, fmt.Errorf("report %q: %w", id, domain.ErrUnknownReport)
	}
}

func run[T any](ctx context.Context, s *Service, id domain.ReportID, fetch func(context.Context) ([]T, error)) ([]T, error) {
	log := logger.WithCtx(ctx)
	key := cacheKeyReport(id)

	// 1. Try cache
	if s.cache != nil {
		var cached []T
		found, err := s.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			metrics.RecordCacheError()
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		case found:
			metrics.RecordCacheHit()
			if cached == nil {
				cached = []T{}
			}
			s.viewed(ctx, id, len(cached), true)
			return cached, nil
		default:
			metrics.RecordCacheMiss()
		}
	}

	// 2. Store
	qctx := ctx
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	start := s.now()
	rows, err := fetch(qctx)
	metrics.RecordReportQuery(id.String(), s.now().Sub(start), len(rows), err)
	if err != nil {
		var qe *domain.QueryError
		if !errors.As(err, &qe) {
			err = &domain.QueryError{Report: id, Op: "query", Err: err}
		}
		log.Error().Err(err).Str("report", id.String()).Msg("report query failed")
		s.audit.ReportFailed(ctx, id, err)
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}

	// 3. Set cache (best effort)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rows, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}

	s.viewed(ctx, id, len(rows), false)
	return rows, nil
}

// viewed audits a served report and publishes the access event.
// Publishing never fails the request.
func (s *Service) viewed(ctx context.Context, id domain.ReportID, rows int, cached bool) {
	s.audit.ReportViewed(ctx, id, rows, cached)

	ev := domain.ReportViewed{
		Report:     id,
		Rows:       rows,
		Subject:    pkgctx.GetSubject(ctx),
		RequestID:  pkgctx.GetRequestID(ctx),
		Cached:     cached,
		OccurredAt: s.now().UTC(),
	}
	if err := s.pub.PublishEvent(ctx, domain.RoutingKeyReportViewed, ev); err != nil {
		s.audit.EventDropped(ctx, domain.RoutingKeyReportViewed, err)
	}
}
