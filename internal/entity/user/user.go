package user

// User is the account record returned by /api/auth/me.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

func (u User) Key() string {
	return u.ID
}

// DisplayName falls back to a neutral name when the profile has no username.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// Credentials is what a client keeps between runs: the bearer token and the
// last known user record.
type Credentials struct {
	Token string
	User  *User
}
