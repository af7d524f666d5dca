package models

import "regexp"

type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// ValidUsername reports whether name is safe to use as a storage key.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}
