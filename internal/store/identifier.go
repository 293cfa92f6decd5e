package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

var validIdentifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// maxIdentifierLength is the PostgreSQL limit; MySQL allows 64 and SQLite more.
const maxIdentifierLength = 63

// ParseTableName validates a target table name of the form [schema.]table and
// returns its parts. Only plain identifiers are accepted, so the parts can be
// quoted safely by every dialect.
func ParseTableName(name string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("table name is empty: %w", prodmig.ErrInvalidConfig)
	}

	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table %q: expected [schema.]table format: %w", name, prodmig.ErrInvalidConfig)
	}

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid table %q: empty identifier: %w", name, prodmig.ErrInvalidConfig)
		}
		if len(part) > maxIdentifierLength {
			return nil, fmt.Errorf("invalid table %q: identifier %q exceeds %d character limit: %w",
				name, part, maxIdentifierLength, prodmig.ErrInvalidConfig)
		}
		if !validIdentifierPattern.MatchString(part) {
			return nil, fmt.Errorf("invalid table %q: %q is not a valid identifier: %w", name, part, prodmig.ErrInvalidConfig)
		}
	}

	return parts, nil
}
