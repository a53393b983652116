package cli

import (
	"fmt"

	"github.com/google/uuid"
)

// shortID abbreviates a UUID for table display.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// resolveID parses a full UUID argument. Short IDs from table output
// must be completed; exact matching keeps destructive commands safe.
func resolveID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q is not a valid id (use the full UUID)", arg)
	}
	return id, nil
}
