package identity

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/store"
)

// Initials takes the first letter of each space-separated part, uppercased.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Message turns an auth error into text fit for an inline form error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrEmailInUse):
		return "That email already has an account."
	case errors.Is(err, ErrWeakPassword):
		return "Password is too short."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, ErrNotSignedIn):
		return "You are not signed in."
	case errors.Is(err, store.ErrUnavailable):
		return "Could not reach the server. Check your connection."
	default:
		return err.Error()
	}
}

// Sentinels shared with the account service so errors.Is works across the wire.
var (
	ErrInvalidCredentials = accounts.ErrInvalidCredentials
	ErrEmailInUse         = accounts.ErrEmailInUse
	ErrWeakPassword       = accounts.ErrWeakPassword
	ErrInvalidEmail       = accounts.ErrInvalidEmail
	ErrNotSignedIn        = errors.New("not signed in")
)
