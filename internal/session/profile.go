package session

import "context"

// Profile is the slice of the user profile document consumed during session
// verification.
type Profile struct {
	UID           string
	Email         string
	EmailVerified bool
	Ruolo         []string
	Disabled      bool
}

// ProfileSource looks up profile documents by user identifier.
type ProfileSource interface {
	FindByUID(ctx context.Context, uid string) (*Profile, error)
}
