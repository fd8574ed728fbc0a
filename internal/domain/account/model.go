package account

import "time"

// RoleProjectManager is assigned to every profile at signup.
const RoleProjectManager = "project_manager"

// Password length bounds in bytes. bcrypt cannot hash more than 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// User is the identity held by the session store.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated session issued by the session store.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Profile is the user profile document kept in the document store
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult is returned by login and signup.
type AuthResult struct {
	Session *Session `json:"session"`
	User    *User    `json:"user"`
}
