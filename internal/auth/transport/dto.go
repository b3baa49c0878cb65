// Package transport provides the wire DTOs of the auth endpoints.
package transport

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the account object returned by /auth/login and /auth/me.
type User struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// Identifier returns the user id whichever key the server used.
func (u User) Identifier() string {
	if u.MongoID != "" {
		return u.MongoID
	}
	return u.ID
}

// UserResponse wraps the account object.
type UserResponse struct {
	User *User `json:"user"`
}

// MessageResponse is the body of POST /auth/logout.
type MessageResponse struct {
	Message string `json:"message"`
}
