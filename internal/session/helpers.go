package session

import (
	"strings"

	"github.com/google/uuid"

	"tabsync/internal/constants"
)

// GenerateCode derives a human-readable session code from a random UUID:
// 6 uppercase alphanumeric characters. Collisions are possible and must be
// handled by the store with a regenerate loop.
func GenerateCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:constants.SessionCodeLen]
}
