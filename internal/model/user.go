package model

import "time"

// User represents a user in the database.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	SavedBooks   []SavedBook
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the token-embeddable identity of the user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email, Username: u.Username}
}

// CreateUserRequest represents a signup request.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents an authentication response with a JWT token and user info.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	ID         string      `json:"_id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	BookCount  int         `json:"bookCount"`
	SavedBooks []SavedBook `json:"savedBooks"`
}

// NewUserResponse strips the password hash and derives the book count.
func NewUserResponse(u *User) UserResponse {
	books := u.SavedBooks
	if books == nil {
		books = []SavedBook{}
	}
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		BookCount:  len(books),
		SavedBooks: books,
	}
}
