package model

import "time"

// User is the signed-in identity as seen by the client.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Profile is the document written under users/{uid} at sign-up.
type Profile struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Account is the credential record behind a User. PasswordHash never leaves the backend.
type Account struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// User strips the credential fields.
func (a Account) User() User {
	return User{UID: a.UID, Email: a.Email, DisplayName: a.DisplayName}
}
