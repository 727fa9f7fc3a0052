package sqlstore

// Report statements. None take parameters.
const (
	qUsersWithRoles = `
		SELECT u.id AS user_id, u.full_name, u.email, r.role_name
		FROM users u
		INNER JOIN roles r ON u.role = r.id`

	qUsersWithProfiles = `
		SELECT u.id AS user_id, u.full_name, u.email, p.id AS profile_id
		FROM users u
		LEFT JOIN profiles p ON u.id = p.user_id`

	qRolesWithUsers = `
		SELECT u.id AS user_id, u.full_name, u.email, r.role_name
		FROM users u
		RIGHT JOIN roles r ON u.role = r.id`

	// right half of profiles-full; merged with qUsersWithProfiles in the service
	qProfilesWithUsers = `
		SELECT u.id AS user_id, u.full_name, u.email, p.id AS profile_id
		FROM users u
		RIGHT JOIN profiles p ON u.id = p.user_id`

	qUserRoleCombos = `
		SELECT u.id AS user_id, u.full_name, r.role_name
		FROM users u
		CROSS JOIN roles r`

	qReferrals = `
		SELECT u.id AS user_id, u.full_name AS user_name,
		       r.id AS referral_id, r.full_name AS referral_name
		FROM users u
		INNER JOIN users r ON u.referral_id = r.id`

	// ties at MAX(occurred_at) yield one row each
	qLatestLogins = `
		SELECT u.id AS user_id, u.full_name, la.occurred_at AS latest_login
		FROM users u
		LEFT JOIN login_audit la ON la.user_id = u.id
		WHERE la.occurred_at = (
			SELECT MAX(la2.occurred_at)
			FROM login_audit la2
			WHERE la2.user_id = u.id
		)`
)
