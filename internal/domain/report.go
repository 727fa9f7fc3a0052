package domain

// ReportID identifies one of the fixed reports. It doubles as the URL slug.
type ReportID string

const (
	ReportUsersRoles     ReportID = "users-roles"
	ReportUsersProfiles  ReportID = "users-profiles"
	ReportRolesUsers     ReportID = "roles-users"
	ReportProfilesFull   ReportID = "profiles-full"
	ReportUserRoleCombos ReportID = "user-role-combos"
	ReportReferrals      ReportID = "referrals"
	ReportLatestLogin    ReportID = "latest-login"
)

type ReportInfo struct {
	ID          ReportID `json:"id"`
	Join        string   `json:"join"`
	Description string   `json:"description"`
}

var catalogue = []ReportInfo{
	{ID: ReportUsersRoles, Join: "inner", Description: "users whose role resolves to an existing role"},
	{ID: ReportUsersProfiles, Join: "left", Description: "every user, with profile_id null when no profile exists"},
	{ID: ReportRolesUsers, Join: "right", Description: "every role, with user fields null when no user holds it"},
	{ID: ReportProfilesFull, Join: "full outer", Description: "all users and all profiles, merged and deduplicated by row"},
	{ID: ReportUserRoleCombos, Join: "cross", Description: "every user paired with every role"},
	{ID: ReportReferrals, Join: "self", Description: "referred users paired with their referrer"},
	{ID: ReportLatestLogin, Join: "left + correlated subquery", Description: "latest login per user; ties at the maximum produce one row each"},
}

// Reports returns the report catalogue in display order.
func Reports() []ReportInfo {
	out := make([]ReportInfo, len(catalogue))
	copy(out, catalogue)
	return out
}

func (id ReportID) Valid() bool {
	for _, r := range catalogue {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (id ReportID) String() string { return string(id) }
