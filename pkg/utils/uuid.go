package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateBillNo generates a unique, human-readable bill number
func GenerateBillNo() string {
	return "BILL-" + strings.ToUpper(uuid.New().String()[:8])
}

// GenerateItemCode generates a unique item code for items created without one
func GenerateItemCode() string {
	return "ITEM-" + strings.ToUpper(uuid.New().String()[:8])
}
