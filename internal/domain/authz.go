package domain

// IsElevated reports whether the role bypasses ownership checks.
func (r Role) IsElevated() bool {
	switch r {
	case RoleAdmin, RoleModerator:
		return true
	case RoleChef, RoleUser:
		return false
	default:
		return false
	}
}

// CanMutate is the single ownership predicate for recipe edit/delete and
// comment delete: the owner, or any elevated role.
func CanMutate(actor *User, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || actor.Role.IsElevated()
}

// HasRole reports whether the user's role is in allowed.
func HasRole(user *User, allowed ...Role) bool {
	if user == nil {
		return false
	}
	for _, r := range allowed {
		if user.Role == r {
			return true
		}
	}
	return false
}

// IsAccessible reports whether actor may read the full content of recipe.
// purchased is whether actor holds a purchase row for it.
func IsAccessible(actor *User, recipe *Recipe, purchased bool) bool {
	if !recipe.IsPaid {
		return true
	}
	if actor == nil {
		return false
	}
	if actor.ID == recipe.AuthorID || actor.Role.IsElevated() {
		return true
	}
	return purchased
}
