package users

import "time"

// User is the profile document backing authentication and role resolution.
type User struct {
	UID                 string
	Email               string
	EmailVerified       bool
	PasswordHash        string
	Ruolo               []string
	Disabled            bool
	Created             time.Time
	Changed             time.Time
	LastModifiedBy      string
	LastModifiedByEmail string
}

// Snapshot renders the document fields as stored, bookkeeping included.
// The audit change detector relies on these exact key names.
func (u *User) Snapshot() map[string]any {
	if u == nil {
		return nil
	}
	ruolo := make([]any, len(u.Ruolo))
	for i, r := range u.Ruolo {
		ruolo[i] = r
	}
	return map[string]any{
		"email":               u.Email,
		"emailVerified":       u.EmailVerified,
		"ruolo":               ruolo,
		"disabled":            u.Disabled,
		"created":             u.Created.UTC().Format(time.RFC3339Nano),
		"changed":             u.Changed.UTC().Format(time.RFC3339Nano),
		"lastModifiedBy":      u.LastModifiedBy,
		"lastModifiedByEmail": u.LastModifiedByEmail,
	}
}
