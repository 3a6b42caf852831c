package models

import "time"

// User is an account identity. Email is the login subject; UserName is the
// display handle. Both are unique and stored in canonical form.
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
