package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateToken returns a single-use opaque token for account confirmation
// and password reset links. It is 32 lowercase hex characters.
func GenerateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// ParseID parses a path identifier. Zero and non-numeric values are rejected.
func ParseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
