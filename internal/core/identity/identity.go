// Package identity describes the signed-in user that namespaces persisted state.
package identity

import "strings"

// Identity is the current signed-in user. The zero value means nobody is signed in.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// New normalises email and returns an Identity.
func New(email, displayName string) Identity {
	return Identity{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: strings.TrimSpace(displayName),
	}
}

// Key is the value persisted state is namespaced by.
func (i Identity) Key() string {
	return i.Email
}

// IsZero reports whether nobody is signed in.
func (i Identity) IsZero() bool {
	return i.Email == ""
}

// String returns the display name when set, else the email.
func (i Identity) String() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Email
}
