package auth

const (
	// AuthorityPrefix namespaces role tokens into authority tokens.
	AuthorityPrefix = "ROLE_"

	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// DeriveAuthorities maps persisted role tokens to authority tokens. Order is kept, duplicates
// collapse, and roles outside the known vocabulary are passed through.
func DeriveAuthorities(roles []string) []string {
	roles = dedupeRoles(roles)
	if len(roles) == 0 {
		return nil
	}
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = AuthorityPrefix + role
	}
	return out
}

// DecideInitialRoles returns the roles a new account starts with. The comparison is exact.
func DecideInitialRoles(identifier, adminIdentifier string) []string {
	if identifier == adminIdentifier {
		return []string{RoleAdmin, RoleUser}
	}
	return []string{RoleUser}
}

func dedupeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}
