package models

// User is the identity reported by the session validation endpoint.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SessionStatus is the body of a session validation response.
type SessionStatus struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s SessionStatus) User() *User {
	return &User{Username: s.Username, Email: s.Email}
}
