package model

import "strings"

// Identity is a social-media identity as yielded by a profile source.
// Handle is the key; every other field may be empty.
type Identity struct {
	// Handle is the unique identifier of the identity (without a leading "@").
	Handle string `json:"handle" yaml:"handle"`

	// DisplayName is the human name shown on the profile.
	// It feeds the email guesser.
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`

	// Bio is the free-form profile text.
	Bio string `json:"bio,omitempty" yaml:"bio,omitempty"`

	// ExternalURL is the single outbound link declared on the profile.
	ExternalURL string `json:"externalUrl,omitempty" yaml:"externalUrl,omitempty"`
}

// NormalizeHandle trims whitespace and a leading "@" from a handle.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
