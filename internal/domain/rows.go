package domain

import "time"

// Nullable columns are pointers so that SQL NULL renders as JSON null.

// UserRoleRow is produced by the inner join (users-roles) and the
// right join (roles-users). On the right join every user field may be nil.
type UserRoleRow struct {
	UserID   *int64  `json:"user_id"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	RoleName *string `json:"role_name"`
}

// UserProfileRow is produced by users-profiles and profiles-full.
type UserProfileRow struct {
	UserID    *int64  `json:"user_id"`
	FullName  *string `json:"full_name"`
	Email     *string `json:"email"`
	ProfileID *int64  `json:"profile_id"`
}

type UserRoleComboRow struct {
	UserID   int64   `json:"user_id"`
	FullName *string `json:"full_name"`
	RoleName *string `json:"role_name"`
}

// ReferralRow pairs a referred user with the user that referred them.
type ReferralRow struct {
	UserID       int64   `json:"user_id"`
	UserName     *string `json:"user_name"`
	ReferralID   int64   `json:"referral_id"`
	ReferralName *string `json:"referral_name"`
}

type LatestLoginRow struct {
	UserID      int64     `json:"user_id"`
	FullName    *string   `json:"full_name"`
	LatestLogin time.Time `json:"latest_login"`
}
