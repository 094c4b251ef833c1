package domain

// UserContext is the profile slice the scorer cares about: who the user is
// and what they currently prioritize. Owned by profile management; read-only
// here. Priorities are ordered, most important first.
type UserContext struct {
	UserID             string   `json:"user_id" db:"user_id"`
	Role               string   `json:"role" db:"role"`
	Priorities         []string `json:"priorities" db:"priorities"`
	CommunicationStyle string   `json:"communication_style" db:"communication_style"`
}

// DefaultUserContext is used when the user has not filled in a profile.
func DefaultUserContext(userID string) UserContext {
	return UserContext{
		UserID:             userID,
		Role:               "Professional",
		CommunicationStyle: "professional",
	}
}
