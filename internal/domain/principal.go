package domain

// Principal is the authenticated caller as supplied by the auth layer.
type Principal struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role string) bool {
	return role != "" && p.Role == role
}
