package utils

import "github.com/google/uuid"

// CreateToken returns an opaque random token built from two v4 UUIDs.
func CreateToken() string {
	first, err := uuid.NewRandom()
	if err != nil {
		return ""
	}

	second, err := uuid.NewRandom()
	if err != nil {
		return ""
	}

	return first.String() + second.String()
}
